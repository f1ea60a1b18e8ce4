package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pharmakart/go-pharma-checkout/internal/aws"
	"github.com/pharmakart/go-pharma-checkout/internal/buyers"
	"github.com/pharmakart/go-pharma-checkout/internal/catalog"
	"github.com/pharmakart/go-pharma-checkout/internal/idempotency"
	"github.com/pharmakart/go-pharma-checkout/internal/orders"
	"github.com/pharmakart/go-pharma-checkout/internal/pricing"
	"github.com/pharmakart/go-pharma-checkout/internal/validation"
)

// HandlerConfig groups dependencies for the checkout handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	CatalogTable     string
	BuyersTable      string
	OrdersTable      string
	IdempotencyTable string
	QueueURL         string
	MetricsNamespace string
	TTLWindow        time.Duration

	// Delivery pricing, admin-configured. DeliveryFee backs both named
	// policies; FreeThreshold only applies to free_over_threshold.
	DeliveryFee   int64
	FreeThreshold int64
}

func (cfg HandlerConfig) policyFor(name string) pricing.DeliveryPolicy {
	switch name {
	case validation.PolicyFreeOverThreshold:
		return pricing.FreeOverThreshold{Fee: cfg.DeliveryFee, Threshold: cfg.FreeThreshold}
	default:
		return pricing.FlatFee{Fee: cfg.DeliveryFee}
	}
}

// RegisterCheckoutRoutes registers the quote, checkout and order routes.
func RegisterCheckoutRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	catalogStore := catalog.NewStore(cfg.DynamoDBClient, cfg.CatalogTable)
	buyerStore := buyers.NewStore(cfg.DynamoDBClient, cfg.BuyersTable)
	idempStore := idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow)
	ordersStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)

	var metrics *aws.Metrics
	if cfg.CloudWatchClient != nil {
		metrics = aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace)
	}

	// loadCart resolves product ids into priced cart lines. A missing product
	// id or an out-of-stock product rejects the whole request: there is no
	// partial pricing result.
	loadCart := func(c *gin.Context, inputs []validation.LineInput, blockOutOfStock bool) ([]pricing.CartLine, bool) {
		ctx := c.Request.Context()
		lines := make([]pricing.CartLine, 0, len(inputs))
		for _, in := range inputs {
			p, err := catalogStore.Get(ctx, in.ProductID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_lookup_failed", "detail": err.Error()})
				return nil, false
			}
			if p == nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown_product", "product_id": in.ProductID})
				return nil, false
			}
			if blockOutOfStock && p.StockStatus == pricing.StockOutOfStock {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product_out_of_stock", "product_id": in.ProductID})
				return nil, false
			}
			lines = append(lines, pricing.CartLine{Product: *p, Quantity: in.Quantity})
		}
		return lines, true
	}

	resolveBuyer := func(c *gin.Context, buyerID string) (pricing.BuyerContext, bool) {
		buyer, err := buyerStore.Context(c.Request.Context(), buyerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "buyer_lookup_failed", "detail": err.Error()})
			return pricing.BuyerContext{}, false
		}
		return buyer, true
	}

	// POST /quote prices a cart without persisting anything. The storefront
	// calls it on every cart change; the returned breakdown is display-only
	// and recomputed at checkout.
	r.POST("/quote", func(c *gin.Context) {
		var req validation.QuoteRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		buyer, ok := resolveBuyer(c, req.BuyerID)
		if !ok {
			return
		}
		lines, ok := loadCart(c, req.Lines, false)
		if !ok {
			return
		}

		breakdown, err := pricing.ComputeCartTotals(lines, buyer, cfg.policyFor(req.DeliveryPolicy))
		if err != nil {
			var verr *pricing.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "pricing_failed", "detail": verr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing_failed", "detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, breakdown)
	})

	// POST /checkout prices the cart server-side and snapshots the breakdown
	// into a persisted order, guarded by an idempotency key.
	r.POST("/checkout", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
			return
		}

		buyer, ok := resolveBuyer(c, req.BuyerID)
		if !ok {
			return
		}
		lines, ok := loadCart(c, req.Lines, true)
		if !ok {
			return
		}

		// Gate submission on minimum order quantities, naming each offending
		// line so the storefront can show which rows to fix.
		if violations := pricing.ValidateOrder(lines, buyer); len(violations) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "minimum_order_quantity_not_met",
				"violations": violations,
			})
			return
		}

		breakdown, err := pricing.ComputeCartTotals(lines, buyer, cfg.policyFor(req.DeliveryPolicy))
		if err != nil {
			var verr *pricing.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "pricing_failed", "detail": verr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing_failed", "detail": err.Error()})
			return
		}

		orderID := uuid.NewString()

		now := time.Now().UTC()
		idempItem := map[string]interface{}{
			"idempotency_key": idempKey,
			"status":          idempotency.StatusInProgress,
			"created_at":      now.Format(time.RFC3339),
			"updated_at":      now.Format(time.RFC3339),
			"order_id":        orderID,
		}

		orderLines, subtotal, discount, fee, total := orders.Snapshot(breakdown)
		order := orders.Order{
			OrderID:         orderID,
			BuyerID:         req.BuyerID,
			BuyerRole:       buyer.Role,
			Status:          orders.StatusPending,
			Lines:           orderLines,
			Subtotal:        subtotal,
			LoyaltyDiscount: discount,
			DeliveryFee:     fee,
			GrandTotal:      total,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		// Attempt the transact write to create idempotency + order atomically
		err = ordersStore.CreateWithIdempotencyTransaction(ctx, cfg.DynamoDBClient, cfg.IdempotencyTable, idempItem, order, cfg.TTLWindow)
		if err != nil {
			// If the transaction failed because the idempotency key exists,
			// fetch the record and replay the stored outcome.
			rec, getErr := idempStore.Get(ctx, idempKey)
			if getErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": getErr.Error()})
				return
			}
			if rec == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction_failed_no_idempotency_record", "detail": err.Error()})
				return
			}
			switch rec.Status {
			case idempotency.StatusDone:
				if rec.ResponseBody != "" {
					var body interface{}
					if derr := json.Unmarshal([]byte(rec.ResponseBody), &body); derr == nil {
						c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
						return
					}
					c.JSON(rec.ResponseStatus, gin.H{"response": rec.ResponseBody})
					return
				}
				c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
				return
			case idempotency.StatusInProgress:
				c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
				return
			case idempotency.StatusFailed:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "order_id": rec.OrderID})
				return
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
				return
			}
		}

		// Order persisted; hand it to the fulfillment queue. If the send
		// fails we mark idempotency FAILED so the client can retry.
		msgPayload := map[string]string{
			"order_id":        orderID,
			"idempotency_key": idempKey,
		}
		if corr := c.GetHeader("X-Request-Id"); corr != "" {
			msgPayload["correlation_id"] = corr
		}
		payloadBytes, _ := json.Marshal(msgPayload)

		attrs := map[string]string{
			"idempotency_key": idempKey,
			"order_id":        orderID,
		}

		if err := publisher.SendFulfillmentMessage(ctx, string(payloadBytes), attrs); err != nil {
			_ = idempStore.MarkFailed(ctx, idempKey, fmt.Sprintf("sqs_send_failed: %v", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}

		if metrics != nil {
			if merr := metrics.RecordOrderCreated(ctx, buyer.Role, order.GrandTotal); merr != nil {
				log.Printf("metrics emit failed for order=%s: %v", orderID, merr)
			}
		}

		responseBody, _ := json.Marshal(gin.H{
			"order_id":    orderID,
			"status":      orders.StatusPending,
			"grand_total": order.GrandTotal,
		})
		_ = idempStore.MarkDone(ctx, idempKey, string(responseBody), http.StatusCreated)

		c.Header("Location", fmt.Sprintf("/orders/%s", orderID))
		c.Data(http.StatusCreated, "application/json", responseBody)
	})

	// GET /orders/:id returns the persisted snapshot, resolved prices included.
	r.GET("/orders/:id", func(c *gin.Context) {
		order, err := ordersStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed", "detail": err.Error()})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})
}
