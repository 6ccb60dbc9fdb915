package http

import (
	"errors"
	"fmt"
	"testing"

	nethttp "net/http"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/mindengage-academics/internal/prereq"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{shared.Validation("x", "op", "bad"), nethttp.StatusBadRequest},
		{prereq.ErrDuplicate, nethttp.StatusConflict},
		{prereq.ErrEdgeNotFound, nethttp.StatusNotFound},
		{fmt.Errorf("wrapped: %w", prereq.ErrSelfReference), nethttp.StatusBadRequest},
		{shared.NewDomainError("x", "op", shared.ErrConflict, "taken"), nethttp.StatusConflict},
		{errors.New("boom"), nethttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
