package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// KeyInstanceID holds the random id of this client install. Sign-out leaves
// it in place.
const KeyInstanceID = "instance_id"

const instanceIDBytes = 8

// InstanceID returns the install id stored in t, minting and storing one on
// first use.
func InstanceID(ctx context.Context, t Tier) (string, error) {
	id, err := getString(ctx, t, KeyInstanceID)
	if err != nil || id != "" {
		return id, err
	}

	id, err = common.MakeRandHexString(instanceIDBytes)
	if err != nil {
		return "", fmt.Errorf("mint instance id: %w", err)
	}
	if err := setJSON(ctx, t, KeyInstanceID, id); err != nil {
		return "", err
	}
	return id, nil
}
