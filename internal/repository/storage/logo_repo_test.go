package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

func TestBankLogoPath(t *testing.T) {
	assert.Equal(t, "banks/12/logo.png", BankLogoPath(12))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(fmt.Errorf("head: %w", &types.NoSuchKey{})))
	assert.True(t, isNotFound(&types.NoSuchBucket{}))
	assert.False(t, isNotFound(errors.New("access denied")))
}
