package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/client/session"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

type fakeController struct {
	mu sync.Mutex

	user   *models.User
	state  session.State
	expiry time.Time

	SignUpResult session.SignUpResult
	SignUpErr    error
	SignInErr    error
	VerifyErr    error
	ResendErr    error

	LastSignUp   []string
	LastSignIn   []string
	LastVerify   string
	LastResend   string
	Calls        []string
	KeepAlives   int
	Stops        int
	Activity     int
	signInResult *models.User
}

func (f *fakeController) record(name string) {
	f.Calls = append(f.Calls, name)
}

func (f *fakeController) Bootstrap(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("bootstrap")
}

func (f *fakeController) SignUp(_ context.Context, email, password, firstName, lastName string) (session.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("signup")
	f.LastSignUp = []string{email, password, firstName, lastName}
	return f.SignUpResult, f.SignUpErr
}

func (f *fakeController) SignIn(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("signin")
	f.LastSignIn = []string{email, password}
	if f.SignInErr != nil {
		return f.SignInErr
	}
	f.user = f.signInResult
	f.state = session.Authenticated
	return nil
}

func (f *fakeController) SignOut(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("signout")
	f.user = nil
	f.state = session.Anonymous
}

func (f *fakeController) ResendVerification(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("resend")
	f.LastResend = email
	return f.ResendErr
}

func (f *fakeController) VerifyEmail(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("verify")
	f.LastVerify = token
	return f.VerifyErr
}

func (f *fakeController) RefreshSession(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("refresh_session")
}

func (f *fakeController) RefreshUserData(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("refresh_user")
}

func (f *fakeController) User() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeController) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) SessionExpiry(context.Context) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiry, !f.expiry.IsZero()
}

func (f *fakeController) StartKeepAlive(context.Context) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.KeepAlives++
	return func() {
		f.mu.Lock()
		f.Stops++
		f.mu.Unlock()
	}
}

func (f *fakeController) NotifyActivity() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Activity++
}

func newTestApp(ctrl *fakeController, input string) *App {
	in := strings.NewReader(input)
	return &App{
		ctrl:   ctrl,
		log:    logging.Nop(),
		in:     in,
		reader: bufio.NewReader(in),
		out:    io.Discard,
	}
}

// captureOutput replaces printlnFn for the duration of the test.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		s := strings.TrimSuffix(fmt.Sprintln(a...), "\n")
		lines = append(lines, s)
		return len(s), nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func stubInputs(t *testing.T, texts []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(texts) {
			return "", io.EOF
		}
		v := texts[i]
		i++
		return v, nil
	}
	getPassword = func(_ *bufio.Reader, _ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
