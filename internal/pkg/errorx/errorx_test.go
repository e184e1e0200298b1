package errorx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testCoder struct{ code, status int }

func (c testCoder) Code() int         { return c.code }
func (c testCoder) HTTPStatus() int   { return c.status }
func (c testCoder) String() string    { return "test" }
func (c testCoder) Reference() string { return "" }

func TestParseCoder(t *testing.T) {
	Register(testCoder{code: 990001, status: http.StatusTeapot})

	base := errors.New("boom")
	err := WrapC(base, 990001, "brew %s", "tea")
	assert.Equal(t, "brew tea: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, http.StatusTeapot, ParseCoder(err).HTTPStatus())
	assert.True(t, IsCode(err, 990001))

	assert.Equal(t, ErrUnknown, ParseCoder(base).Code())
	assert.Equal(t, ErrUnknown, ParseCoder(WithCode(990999, "unregistered")).Code())
	assert.Nil(t, WrapC(nil, 990001, "nothing"))
}

func TestMustRegister_Duplicate(t *testing.T) {
	MustRegister(testCoder{code: 990002, status: http.StatusBadRequest})
	assert.Panics(t, func() { MustRegister(testCoder{code: 990002, status: http.StatusBadRequest}) })
	assert.Panics(t, func() { Register(testCoder{code: ErrUnknown}) })
}
