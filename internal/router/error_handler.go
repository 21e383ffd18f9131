package router

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"blogapi/internal/apperror"
)

// NewHTTPErrorHandler returns the terminal error normalizer. Every error
// that escapes a handler passes through here exactly once: it is logged
// with request context, then translated into the uniform client envelope.
// Stack traces appear in the response body only in development mode.
func NewHTTPErrorHandler(logger *logrus.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		stack := string(debug.Stack())
		logger.WithFields(logrus.Fields{
			"message": err.Error(),
			"stack":   stack,
			"url":     c.Request().RequestURI,
			"method":  c.Request().Method,
			"ip":      c.RealIP(),
		}).Error("request failed")

		status, body := normalize(err, stack, dev)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.WithField("error", err.Error()).Error("failed to write error response")
		}
	}
}

// normalize maps an error onto a status code and response envelope.
// AppError carries its own taxonomy tag; echo.HTTPError (routing, binding)
// passes through with its declared code; anything else is a 500 that never
// leaks its message.
func normalize(err error, stack string, dev bool) (int, apperror.ErrorResponse) {
	if appErr, ok := apperror.FromError(err); ok {
		body := appErr.ToResponse()
		if dev && appErr.StatusCode() == http.StatusInternalServerError {
			body.Stack = stack
		}
		return appErr.StatusCode(), body
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if s, isString := httpErr.Message.(string); isString {
			message = s
		}
		return httpErr.Code, apperror.ErrorResponse{Error: message}
	}

	body := apperror.ErrorResponse{Error: "Server Error"}
	if dev {
		body.Stack = stack
	}
	return http.StatusInternalServerError, body
}
