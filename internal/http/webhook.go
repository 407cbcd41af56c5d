package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/qtix/ticket-gateway/internal/event"
	"github.com/qtix/ticket-gateway/internal/metrics"
	"github.com/qtix/ticket-gateway/internal/model"
	"github.com/qtix/ticket-gateway/internal/signature"
)

// signatureHeader is the provider's webhook signature header.
const signatureHeader = "X-Razorpay-Signature"

// Fulfiller processes one extracted payment fact.
type Fulfiller interface {
	Fulfill(ctx context.Context, fact *model.PaymentFact) (*model.FulfillmentOutcome, error)
}

// webhookHandler runs the pipeline for one delivery: verify the signature
// on the raw bytes, parse, filter by target, fulfill.
//
// Response contract: anything validly authenticated and processed answers
// 2xx (even on partial downstream failure) so the provider does not
// redeliver; only auth failures (401) and parse/processing faults (500)
// are non-2xx.
func webhookHandler(secret string, extractor *event.Extractor, svc Fulfiller) echo.HandlerFunc {
	return func(c echo.Context) error {
		metrics.EventsTotal.WithLabelValues("received").Inc()

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "failed to read request body",
			})
		}

		// verification runs on the exact raw bytes, before any parsing
		if !signature.Verify(secret, body, c.Request().Header.Get(signatureHeader)) {
			metrics.EventsTotal.WithLabelValues("invalid_signature").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		}

		var env model.WebhookEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			metrics.EventsTotal.WithLabelValues("malformed").Inc()
			return c.JSON(http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "invalid event body: " + err.Error(),
			})
		}

		fact := extractor.Extract(&env)
		if fact == nil {
			metrics.EventsTotal.WithLabelValues("ignored").Inc()
			return c.String(http.StatusOK, "Payment not for target page")
		}

		out, err := svc.Fulfill(c.Request().Context(), fact)
		if err != nil {
			log.Errorf("fulfillment failed for %s: %v", fact.PaymentID, err)

			return c.JSON(http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
		}

		resp := map[string]any{
			"success":    true,
			"ticket_id":  out.TicketID,
			"email_sent": out.EmailSent,
			"db_saved":   out.DBSaved,
		}
		if out.Duplicate {
			resp["duplicate"] = true
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func livenessHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "Ticket gateway is running!")
	}
}
