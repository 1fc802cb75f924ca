package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveError_Is(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := error(&ResolveError{Kind: KindInfrastructure, Code: "X", Err: cause})

	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrExpired)
	assert.Contains(t, err.Error(), "dial tcp")

	assert.ErrorIs(t, &ResolveError{Kind: KindNotFound}, ErrNotFound)
	assert.ErrorIs(t, &ResolveError{Kind: KindExpired}, ErrExpired)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindExpired, KindOf(&ResolveError{Kind: KindExpired}))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("other")))
	assert.Equal(t, "not_found", KindNotFound.String())
}
