package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bahati/elimu/core"
	"github.com/bahati/elimu/core/payment"
	"github.com/bahati/elimu/core/student"
	"github.com/bahati/elimu/core/task"
	"github.com/bahati/elimu/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized.")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errKind is the closed taxonomy every API error is classified into.
// First match wins; anything unknown falls through to errKindUnclassified.
type errKind int

const (
	errKindUnclassified errKind = iota
	errKindAuth
	errKindNotFound
	errKindSilent
	errKindValidation
)

func (k errKind) String() string {
	switch k {
	case errKindAuth:
		return "auth"
	case errKindNotFound:
		return "not_found"
	case errKindSilent:
		return "silent"
	case errKindValidation:
		return "validation"
	default:
		return "unclassified"
	}
}

// errorResponse is the stable JSON error envelope API clients depend on.
// Errors is only present when non-empty.
type errorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// classify maps an error to its kind, HTTP status code and response envelope.
func classify(err error) (errKind, int, errorResponse) {
	res := errorResponse{Success: false}

	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		if origErr == middleware.ErrJWTMissing || origErr.Code == http.StatusUnauthorized {
			res.Message = errUnauthorized.Message.(string)
			return errKindAuth, http.StatusUnauthorized, res
		}
		res.Message = fmt.Sprintf("%v", origErr.Message)
		if origErr.Code == http.StatusNotFound {
			return errKindNotFound, http.StatusNotFound, res
		}
		// other framework errors carry their own status and stay unlogged
		return errKindSilent, origErr.Code, res

	case *core.SilentError:
		res.Message = origErr.Msg
		return errKindSilent, origErr.Code, res

	case validator.ValidationErrors:
		fldErrs := make(map[string][]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = append(fldErrs[vErr.Field()], vErr.Translate(core.Translator))
		}
		res.Message = "invalid input"
		res.Errors = fldErrs
		return errKindValidation, http.StatusUnprocessableEntity, res

	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string][]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = append(fldErrs[fErr.Field], fErr.Error)
			}
			res.Errors = fldErrs
		}
		res.Message = origErr.Error()
		if res.Message == "" {
			res.Message = "invalid input"
		}
		return errKindValidation, http.StatusUnprocessableEntity, res
	}

	switch errors.Cause(err) {
	case user.ErrNotFound, student.ErrNotFound, payment.ErrNotFound, task.ErrNotFound:
		res.Message = errors.Cause(err).Error()
		return errKindNotFound, http.StatusNotFound, res
	}

	res.Message = err.Error()
	return errKindUnclassified, http.StatusBadRequest, res
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler producing the
// uniform error envelope. Unclassified errors are logged with full request
// context; every other kind is an expected client-attributable condition and
// stays out of the logs. signalShutdown is called whenever a core shutdown
// error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		kind, code, res := classify(err)

		if kind == errKindUnclassified {
			logUnclassified(logger, err, ctx)

			// shutting down...
			if core.IsShutdown(err) && signalShutdown != nil {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// logUnclassified writes exactly one structured record for an unexpected
// error. Request context extraction is best-effort and must never panic the
// handler.
func logUnclassified(logger core.Logger, err error, ctx echo.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("api: error while logging error: %v", r), err)
		}
	}()

	record := map[string]interface{}{
		"kind":    fmt.Sprintf("%T", errors.Cause(err)),
		"message": err.Error(),
	}
	if file, line, ok := errOrigin(err); ok {
		record["file"] = file
		record["line"] = line
	}
	if req := ctx.Request(); req != nil {
		record["ip"] = ctx.RealIP()
		record["method"] = req.Method
		record["uri"] = req.RequestURI
		record["params"] = requestParams(ctx)
	}

	logger.Error(err.Error(), errors.Wrap(err, "unhandled API error"), record)
}

// errOrigin extracts the innermost recorded source location, when the error
// carries a pkg/errors stack trace.
func errOrigin(err error) (file string, line int, ok bool) {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	var st errors.StackTrace
	for e := err; e != nil; {
		if t, isST := e.(stackTracer); isST {
			st = t.StackTrace()
		}
		cause, isCauser := e.(interface{ Cause() error })
		if !isCauser {
			break
		}
		e = cause.Cause()
	}
	if len(st) == 0 {
		return "", 0, false
	}

	frame := st[0]
	return fmt.Sprintf("%s", frame), parseFrameLine(fmt.Sprintf("%d", frame)), true
}

func parseFrameLine(s string) int {
	var line int
	_, _ = fmt.Sscanf(s, "%d", &line)
	return line
}

func requestParams(ctx echo.Context) map[string][]string {
	params := make(map[string][]string)
	for k, vs := range ctx.QueryParams() {
		params[k] = vs
	}
	if form, err := ctx.FormParams(); err == nil {
		for k, vs := range form {
			params[k] = vs
		}
	}
	return params
}
