package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecommkit/orderflow/internal/order/application"
	"github.com/ecommkit/orderflow/internal/order/domain"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	validate *validatorv10.Validate
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validatorv10.New(),
		tracer:   otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	CustomerID string           `json:"customer_id" validate:"required"`
	Products   []orderItemInput `json:"products" validate:"required,min=1,dive"`
}

type orderItemInput struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type orderResp struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	TotalCents    int64           `json:"total_cents"`
	OrderProducts []orderItemResp `json:"order_products"`
	CreatedAt     time.Time       `json:"created_at"`
}

type orderItemResp struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]application.ItemRequest, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, application.ItemRequest{ProductID: p.ID, Quantity: p.Quantity})
	}

	order, err := h.service.CreateOrder(ctx, req.CustomerID, items)
	if err != nil {
		h.log.Warn("create order failed", "customer_id", req.CustomerID, "err", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toOrderResp(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderResp(order))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrNoProductsFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func toOrderResp(o domain.Order) orderResp {
	items := make([]orderItemResp, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResp{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}
	return orderResp{
		ID:            o.ID,
		CustomerID:    o.Customer.ID,
		TotalCents:    o.TotalCents,
		OrderProducts: items,
		CreatedAt:     o.CreatedAt,
	}
}
