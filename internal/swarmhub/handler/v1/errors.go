package v1

import (
	"net/http"

	"github.com/kiosk404/swarmscope/internal/pkg/errorx"
)

// Swarmhub handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (swarmhub handler)
//   - XX: resource group (00=common, 01=run, 02=event log)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Run errors (1001xx).
	ErrRunNotFound         = 100101
	ErrRunList             = 100102
	ErrRunCreate           = 100103
	ErrRunGet              = 100104
	ErrEmptyStream         = 100105
	ErrInvalidRequirements = 100106

	// Event log errors (1002xx).
	ErrEventLog = 100201
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Run.
	errorx.MustRegister(newCoder(ErrRunNotFound, http.StatusNotFound, "Run not found"))
	errorx.MustRegister(newCoder(ErrRunList, http.StatusInternalServerError, "Failed to list runs"))
	errorx.MustRegister(newCoder(ErrRunCreate, http.StatusInternalServerError, "Failed to record run"))
	errorx.MustRegister(newCoder(ErrRunGet, http.StatusInternalServerError, "Failed to load run"))
	errorx.MustRegister(newCoder(ErrEmptyStream, http.StatusBadRequest, "Request body contained no stream events"))
	errorx.MustRegister(newCoder(ErrInvalidRequirements, http.StatusBadRequest, "Handoff requirements must be Role=count"))

	// Event log.
	errorx.MustRegister(newCoder(ErrEventLog, http.StatusInternalServerError, "Failed to load run events"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }
