package http

import (
	"strconv"

	"lastmile/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// uuidParam binds a required path parameter holding a UUID.
func uuidParam(ctx echo.Context, name string) (kernel.UUID, error) {
	var raw uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, badRequest("Invalid format for parameter " + name + ": " + err.Error())
	}

	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return kernel.UUID{}, badRequest("Invalid format for parameter " + name + ": " + err.Error())
	}
	return id, nil
}

// tokenParam binds a required path parameter holding an opaque link token.
func tokenParam(ctx echo.Context, name string) (kernel.Token, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", badRequest("Invalid format for parameter " + name + ": " + err.Error())
	}

	token, err := kernel.TokenFromString(raw)
	if err != nil {
		return "", badRequest("Invalid format for parameter " + name + ": " + err.Error())
	}
	return token, nil
}

// optionalUUIDQuery reads an optional query parameter holding a UUID.
func optionalUUIDQuery(ctx echo.Context, name string) (*kernel.UUID, error) {
	value := ctx.QueryParam(name)
	if value == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return nil, badRequest("Invalid format for parameter " + name + ": " + err.Error())
	}
	return &id, nil
}

// boolQuery reads an optional boolean query parameter.
func boolQuery(ctx echo.Context, name string) (bool, error) {
	value := ctx.QueryParam(name)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, badRequest("Invalid format for parameter " + name)
	}
	return b, nil
}
