package rest

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// eqFilter reads a PostgREST "col=eq.value" filter. Only the eq operator is
// supported.
func eqFilter(c echo.Context, col string) (string, bool, error) {
	raw := c.QueryParam(col)
	if raw == "" {
		return "", false, nil
	}
	v, ok := strings.CutPrefix(raw, "eq.")
	if !ok {
		return "", false, badRequest(codeBadFilter, "unsupported filter on "+col+": "+raw)
	}
	if v == "" {
		return "", false, badRequest(codeBadFilter, "empty filter value on "+col)
	}
	return v, true, nil
}

// requireEq is eqFilter for routes that refuse to touch every row.
func requireEq(c echo.Context, col string) (string, error) {
	v, ok, err := eqFilter(c, col)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", badRequest(codeBadFilter, "filter on "+col+" is required")
	}
	return v, nil
}

// wantsRepresentation reports whether the Prefer header asks for the written
// rows back.
func wantsRepresentation(c echo.Context) bool {
	for _, p := range strings.Split(c.Request().Header.Get(common.PreferHeaderName), ",") {
		if strings.TrimSpace(p) == "return=representation" {
			return true
		}
	}
	return false
}
