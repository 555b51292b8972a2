package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lastmile/api"
	"lastmile/cmd"
	httpin "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/evidence"
	"lastmile/internal/adapters/out/postgres/pgtest"
	"lastmile/internal/adapters/out/postgres/pushrepo"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []event.Event
}

func (n *recordingNotifier) Notify(_ context.Context, events []event.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func (n *recordingNotifier) types() []event.Type {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]event.Type, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// HTTPIntegrationTestSuite drives the API end to end against a real database.
type HTTPIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	notifier *recordingNotifier
	e        *echo.Echo
}

func TestHTTPIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(HTTPIntegrationTestSuite))
}

func (suite *HTTPIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *HTTPIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *HTTPIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())

	store, err := evidence.NewFileSystemStore(suite.T().TempDir(), "http://files.test")
	suite.Require().NoError(err)

	suite.notifier = &recordingNotifier{}
	root := cmd.NewCompositionRoot(
		suite.database.DB,
		pushrepo.NewGormPushSubscriptionRepository(suite.database.DB),
		suite.notifier,
		store,
		commands.OrderPolicy{DefaultShipping: kernel.MustMoney("60"), LinkTTL: 72 * time.Hour},
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc, err := api.Load()
	suite.Require().NoError(err)
	validator, err := httpin.OpenAPIValidator(doc)
	suite.Require().NoError(err)

	suite.e = echo.New()
	suite.e.HTTPErrorHandler = httpin.ErrorHandler(logger)
	suite.e.Use(validator)
	httpin.RegisterHandlers(suite.e, httpin.NewServer(root.HTTPHandlers(), logger))
}

func (suite *HTTPIntegrationTestSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *HTTPIntegrationTestSuite) decode(rec *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (suite *HTTPIntegrationTestSuite) placeOrder(phone string) httpin.PlacedOrder {
	rec := suite.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"name":    "Lucía Pérez",
		"phone":   phone,
		"address": "Av. Juárez 12",
		"items":   []map[string]any{{"name": "Blusa", "quantity": 2, "unitPrice": 95}},
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var placed httpin.PlacedOrder
	suite.decode(rec, &placed)
	return placed
}

func (suite *HTTPIntegrationTestSuite) createRoute(orderIDs ...string) httpin.Route {
	rec := suite.do(http.MethodPost, "/api/v1/routes", httpin.CreateRouteRequest{OrderIDs: orderIDs})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var r httpin.Route
	suite.decode(rec, &r)
	return r
}

func (suite *HTTPIntegrationTestSuite) TestPlaceOrder() {
	suite.Run("should charge shipping on a new delivery order", func() {
		placed := suite.placeOrder("5512345678")

		suite.Equal("250.00", placed.Total.String())
		suite.False(placed.Merged)
		suite.NotEmpty(placed.AccessToken)
	})

	suite.Run("should merge into the pending order of a returning client", func() {
		first := suite.placeOrder("5500000001")

		rec := suite.do(http.MethodPost, "/api/v1/orders", map[string]any{
			"name":  "Lucía Pérez",
			"phone": "5500000001",
			"items": []map[string]any{{"name": "Falda", "quantity": 1, "unitPrice": 100}},
		})
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var merged httpin.PlacedOrder
		suite.decode(rec, &merged)
		suite.True(merged.Merged)
		suite.Equal(first.OrderID, merged.OrderID)
		suite.Equal(first.AccessToken, merged.AccessToken)
		suite.Equal("350.00", merged.Total.String())
	})

	suite.Run("should reject a body the API document does not allow", func() {
		rec := suite.do(http.MethodPost, "/api/v1/orders", map[string]any{"name": "Ana"})

		suite.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (suite *HTTPIntegrationTestSuite) TestRouteLifecycle() {
	first := suite.placeOrder("5511111111")
	second := suite.placeOrder("5522222222")

	r := suite.createRoute(first.OrderID, second.OrderID)
	suite.Equal("Pending", r.Status)
	suite.Require().Len(r.Deliveries, 2)
	suite.Equal(first.OrderID, r.Deliveries[0].OrderID)
	suite.Equal(1, r.Deliveries[0].SortOrder)

	suite.Run("should start the route and put the first stop in transit", func() {
		rec := suite.do(http.MethodPost, "/api/v1/routes/"+r.ID+"/start", nil)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var started httpin.Route
		suite.decode(rec, &started)
		suite.Equal("Active", started.Status)
		suite.Equal("InTransit", started.Deliveries[0].Status)
		suite.Equal("Pending", started.Deliveries[1].Status)
	})

	suite.Run("should show the customer in transit at the head of the queue", func() {
		rec := suite.do(http.MethodGet, "/api/v1/pedido/"+first.AccessToken, nil)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var view httpin.CustomerOrder
		suite.decode(rec, &view)
		suite.Equal("InTransit", view.Status)
		suite.True(view.IsCurrentDelivery)
		suite.Require().NotNil(view.DeliveriesAhead)
		suite.Equal(0, *view.DeliveriesAhead)
	})

	suite.Run("should accept a driver position", func() {
		rec := suite.do(http.MethodPost, "/api/v1/driver/"+r.DriverToken+"/location",
			map[string]float64{"latitude": 19.43, "longitude": -99.13})
		suite.Equal(http.StatusNoContent, rec.Code, rec.Body.String())
	})

	suite.Run("should deliver with evidence and advance to the next stop", func() {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		suite.Require().NoError(w.WriteField("notes", "Entregado en recepción"))
		part, err := w.CreateFormFile("photos", "door.jpg")
		suite.Require().NoError(err)
		_, err = part.Write([]byte("jpeg bytes"))
		suite.Require().NoError(err)
		suite.Require().NoError(w.Close())

		target := "/api/v1/driver/" + r.DriverToken + "/deliver/" + r.Deliveries[0].ID
		req := httptest.NewRequest(http.MethodPost, target, &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec := httptest.NewRecorder()
		suite.e.ServeHTTP(rec, req)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var after httpin.Route
		suite.decode(rec, &after)
		suite.Equal("Delivered", after.Deliveries[0].Status)
		suite.Require().Len(after.Deliveries[0].EvidenceURLs, 1)
		suite.True(strings.HasPrefix(after.Deliveries[0].EvidenceURLs[0], "http://files.test/evidence/"))
		suite.Equal("InTransit", after.Deliveries[1].Status)
	})

	suite.Run("should complete the route when the last stop fails", func() {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		suite.Require().NoError(w.WriteField("reason", "Nadie en casa"))
		suite.Require().NoError(w.Close())

		target := "/api/v1/driver/" + r.DriverToken + "/fail/" + r.Deliveries[1].ID
		req := httptest.NewRequest(http.MethodPost, target, &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec := httptest.NewRecorder()
		suite.e.ServeHTTP(rec, req)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var after httpin.Route
		suite.decode(rec, &after)
		suite.Equal("Completed", after.Status)
		suite.Equal("NotDelivered", after.Deliveries[1].Status)
		suite.Equal("Nadie en casa", after.Deliveries[1].FailureReason)
	})

	suite.Run("should refuse to move a processed stop back in transit", func() {
		target := "/api/v1/driver/" + r.DriverToken + "/transit/" + r.Deliveries[0].ID
		rec := suite.do(http.MethodPost, target, nil)
		suite.Equal(http.StatusBadRequest, rec.Code)
	})

	suite.Run("should have emitted the lifecycle events", func() {
		types := suite.notifier.types()
		suite.Contains(types, event.RouteStarted)
		suite.Contains(types, event.DeliveryCompleted)
		suite.Contains(types, event.DeliveryFailed)
		suite.Contains(types, event.RouteCompleted)
	})
}

func (suite *HTTPIntegrationTestSuite) TestLoyaltyAfterDelivery() {
	placed := suite.placeOrder("5533333333")
	r := suite.createRoute(placed.OrderID)
	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/v1/routes/"+r.ID+"/liquidate", nil).Code)

	var clientID string
	suite.Require().NoError(suite.database.DB.
		Raw("SELECT client_id::text FROM orders WHERE id = ?", placed.OrderID).
		Scan(&clientID).Error)

	suite.Run("should credit a tenth of the total", func() {
		rec := suite.do(http.MethodGet, "/api/v1/clients/"+clientID+"/loyalty", nil)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var summary httpin.LoyaltySummary
		suite.decode(rec, &summary)
		suite.Equal(25, summary.CurrentPoints)
		suite.Equal("Frecuente", summary.Category)
	})

	suite.Run("should apply a manual adjustment", func() {
		rec := suite.do(http.MethodPost, "/api/v1/clients/"+clientID+"/loyalty/adjust",
			httpin.AdjustLoyaltyRequest{Points: 80, Reason: "Promoción"})
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var summary httpin.LoyaltySummary
		suite.decode(rec, &summary)
		suite.Equal(105, summary.CurrentPoints)
		suite.Equal("Rose Gold", summary.Tier)

		rec = suite.do(http.MethodGet, "/api/v1/clients/"+clientID+"/loyalty/history", nil)
		suite.Require().Equal(http.StatusOK, rec.Code)
		var history []httpin.LoyaltyEntry
		suite.decode(rec, &history)
		suite.Len(history, 2)
	})

	suite.Run("should refuse to delete a client with orders", func() {
		rec := suite.do(http.MethodDelete, "/api/v1/clients/"+clientID, nil)
		suite.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (suite *HTTPIntegrationTestSuite) TestCustomerLink() {
	placed := suite.placeOrder("5544444444")

	suite.Run("should confirm a pending order", func() {
		rec := suite.do(http.MethodPost, "/api/v1/pedido/"+placed.AccessToken+"/confirm", nil)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var view httpin.CustomerOrder
		suite.decode(rec, &view)
		suite.Equal("Confirmed", view.Status)
	})

	suite.Run("should answer 410 once the link expired", func() {
		suite.Require().NoError(suite.database.DB.
			Exec("UPDATE orders SET expires_at = ? WHERE id = ?", time.Now().Add(-time.Hour), placed.OrderID).Error)

		rec := suite.do(http.MethodGet, "/api/v1/pedido/"+placed.AccessToken, nil)
		suite.Equal(http.StatusGone, rec.Code)
	})

	suite.Run("should answer 404 for an unknown link", func() {
		rec := suite.do(http.MethodGet, "/api/v1/pedido/"+kernel.NewToken().String(), nil)
		suite.Equal(http.StatusNotFound, rec.Code)
	})
}

func (suite *HTTPIntegrationTestSuite) TestRouteAdministration() {
	suite.Run("should refuse a route with nothing eligible", func() {
		rec := suite.do(http.MethodPost, "/api/v1/routes",
			httpin.CreateRouteRequest{OrderIDs: []string{kernel.NewUUID().String()}})
		suite.Equal(http.StatusBadRequest, rec.Code)
	})

	suite.Run("should list open routes and delete one", func() {
		placed := suite.placeOrder("5555555555")
		r := suite.createRoute(placed.OrderID)

		rec := suite.do(http.MethodGet, "/api/v1/routes?open=true", nil)
		suite.Require().Equal(http.StatusOK, rec.Code)
		var routes []httpin.RouteSummary
		suite.decode(rec, &routes)
		suite.Require().Len(routes, 1)
		suite.Equal(r.ID, routes[0].ID)

		suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/v1/routes/"+r.ID, nil).Code)
		suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/api/v1/routes/"+r.ID, nil).Code)

		rec = suite.do(http.MethodGet, "/api/v1/pedido/"+placed.AccessToken, nil)
		suite.Require().Equal(http.StatusOK, rec.Code)
		var view httpin.CustomerOrder
		suite.decode(rec, &view)
		suite.Equal("Pending", view.Status)
	})

	suite.Run("should keep the staff chat of a route", func() {
		placed := suite.placeOrder("5566666666")
		r := suite.createRoute(placed.OrderID)

		rec := suite.do(http.MethodPost, "/api/v1/routes/"+r.ID+"/chat", httpin.ChatRequest{Text: "¿Cómo vas?"})
		suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		rec = suite.do(http.MethodGet, "/api/v1/driver/"+r.DriverToken+"/chat", nil)
		suite.Require().Equal(http.StatusOK, rec.Code)
		var messages []httpin.ChatMessage
		suite.decode(rec, &messages)
		suite.Require().Len(messages, 1)
		suite.Equal("Admin", messages[0].Sender)
		suite.Nil(messages[0].DeliveryID)
	})
}
