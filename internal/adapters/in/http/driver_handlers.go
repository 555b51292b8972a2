package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// maxReportMemory is the multipart size kept in memory before spilling to disk.
const maxReportMemory = 32 << 20

// GetDriverRoute handles GET /api/v1/driver/{routeToken}.
func (s *Server) GetDriverRoute(ctx echo.Context) error {
	token, err := tokenParam(ctx, "routeToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respondDriverRoute(ctx, token)
}

// StartDriverRoute handles POST /api/v1/driver/{routeToken}/start.
func (s *Server) StartDriverRoute(ctx echo.Context) error {
	ref, token, err := s.driverRef(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewStartRouteCommand(ref)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.StartRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondDriverRoute(ctx, token)
}

// MarkInTransit handles POST /api/v1/driver/{routeToken}/transit/{deliveryId}.
func (s *Server) MarkInTransit(ctx echo.Context) error {
	ref, token, err := s.driverRef(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	deliveryID, err := uuidParam(ctx, "deliveryId")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewMarkInTransitCommand(ref, deliveryID)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.MarkInTransit.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondDriverRoute(ctx, token)
}

// Deliver handles POST /api/v1/driver/{routeToken}/deliver/{deliveryId}.
// The body is multipart: an optional notes field and up to
// MaxPhotosPerReport files under photos.
func (s *Server) Deliver(ctx echo.Context) error {
	ref, token, err := s.driverRef(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	deliveryID, err := uuidParam(ctx, "deliveryId")
	if err != nil {
		return s.fail(ctx, err)
	}

	form, err := reportForm(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	photos, closeAll, err := openPhotos(form)
	if err != nil {
		return s.fail(ctx, err)
	}
	defer closeAll()

	cmd, err := commands.NewDeliverCommand(ref, deliveryID, formValue(form, "notes"), photos)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.ResolveDelivery.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondDriverRoute(ctx, token)
}

// FailDelivery handles POST /api/v1/driver/{routeToken}/fail/{deliveryId}.
// Same body as Deliver plus a required reason field.
func (s *Server) FailDelivery(ctx echo.Context) error {
	ref, token, err := s.driverRef(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	deliveryID, err := uuidParam(ctx, "deliveryId")
	if err != nil {
		return s.fail(ctx, err)
	}

	form, err := reportForm(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	photos, closeAll, err := openPhotos(form)
	if err != nil {
		return s.fail(ctx, err)
	}
	defer closeAll()

	cmd, err := commands.NewFailDeliveryCommand(ref, deliveryID,
		formValue(form, "reason"), formValue(form, "notes"), photos)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.ResolveDelivery.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondDriverRoute(ctx, token)
}

// UpdateLocation handles POST /api/v1/driver/{routeToken}/location.
func (s *Server) UpdateLocation(ctx echo.Context) error {
	ref, _, err := s.driverRef(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req LocationRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}
	if req.Latitude == nil || req.Longitude == nil {
		return s.fail(ctx, badRequest("latitude and longitude are required"))
	}

	cmd, err := commands.NewUpdateLocationCommand(ref, *req.Latitude, *req.Longitude)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.UpdateLocation.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetDriverChat handles GET /api/v1/driver/{routeToken}/chat?deliveryId=.
func (s *Server) GetDriverChat(ctx echo.Context) error {
	token, err := tokenParam(ctx, "routeToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	deliveryID, err := optionalUUIDQuery(ctx, "deliveryId")
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewDriverChatHistoryQuery(token, deliveryID)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respondChat(ctx, query)
}

// SendDriverChat handles POST /api/v1/driver/{routeToken}/chat.
func (s *Server) SendDriverChat(ctx echo.Context) error {
	token, err := tokenParam(ctx, "routeToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	var req ChatRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}

	var deliveryID *kernel.UUID
	if req.DeliveryID != nil && *req.DeliveryID != "" {
		id, parseErr := kernel.UUIDFromString(*req.DeliveryID)
		if parseErr != nil {
			return s.fail(ctx, badRequest("Invalid deliveryId"))
		}
		deliveryID = &id
	}

	cmd, err := commands.NewDriverChatMessage(token, deliveryID, req.Text)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.sendChat(ctx, cmd)
}

func (s *Server) driverRef(ctx echo.Context) (commands.RouteRef, kernel.Token, error) {
	token, err := tokenParam(ctx, "routeToken")
	if err != nil {
		return commands.RouteRef{}, "", err
	}
	ref, err := commands.RouteByDriverToken(token)
	if err != nil {
		return commands.RouteRef{}, "", err
	}
	return ref, token, nil
}

func (s *Server) respondDriverRoute(ctx echo.Context, token kernel.Token) error {
	query, err := queries.NewGetDriverRouteQuery(token)
	if err != nil {
		return s.fail(ctx, err)
	}
	view, err := s.h.GetRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toRoute(view))
}

// reportForm parses the multipart report. A body that is not multipart
// reads as an empty form so plain POSTs without evidence still work.
func reportForm(ctx echo.Context) (*multipart.Form, error) {
	err := ctx.Request().ParseMultipartForm(maxReportMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return &multipart.Form{}, nil
	}
	if err != nil {
		return nil, badRequest("Invalid multipart body")
	}
	return ctx.Request().MultipartForm, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// openPhotos opens every photos file. The returned func closes them all.
func openPhotos(form *multipart.Form) ([]commands.Photo, func(), error) {
	headers := form.File["photos"]
	if len(headers) > commands.MaxPhotosPerReport {
		return nil, func() {}, badRequest("Too many photos")
	}

	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	photos := make([]commands.Photo, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, badRequest("Unreadable photo " + header.Filename)
		}
		files = append(files, f)
		photos = append(photos, commands.Photo{Filename: header.Filename, Content: f})
	}
	return photos, closeAll, nil
}
