package fetchcore_test

import (
	"errors"
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := fetchcore.Errorf(fetchcore.ENOTFOUND, "domain %q not found", "example.com")
	assert.Equal(t, fetchcore.ENOTFOUND, fetchcore.ErrorCode(err))
	assert.Equal(t, `domain "example.com" not found`, fetchcore.ErrorMessage(err))
}

func TestErrorCode_NonFetchcoreError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fetchcore.EINTERNAL, fetchcore.ErrorCode(errors.New("boom")))
}

func TestErrorCode_Nil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", fetchcore.ErrorCode(nil))
}
