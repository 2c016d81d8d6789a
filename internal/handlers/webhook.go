package handlers

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"strings"

	"kudi/internal/models"
	"kudi/internal/services/webhook"
	"kudi/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	stripewebhook "github.com/stripe/stripe-go/v72/webhook"
	"go.uber.org/zap"
)

const (
	paystackSignatureHeader = "x-paystack-signature"
	momoTokenHeader         = "X-Callback-Token"
	stripeSignatureHeader   = "Stripe-Signature"
)

// minorUnits converts kobo and pesewas to naira and cedis.
var minorUnits = decimal.NewFromInt(100)

// WebhookSecrets holds the per-provider verification secrets. An empty
// secret disables that provider's endpoint.
type WebhookSecrets struct {
	Paystack string
	Momo     string
	Stripe   string
}

type WebhookHandler struct {
	reconciler *webhook.Service
	secrets    WebhookSecrets
	log        *zap.Logger
}

func NewWebhookHandler(reconciler *webhook.Service, secrets WebhookSecrets, log *zap.Logger) *WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandler{
		reconciler: reconciler,
		secrets:    secrets,
		log:        log.Named("webhook"),
	}
}

// providerPayload is the {event, data} envelope shared by Paystack and MoMo.
type providerPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        json.RawMessage `json:"id"`
		Reference string          `json:"reference"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
	} `json:"data"`
}

func (h *WebhookHandler) Paystack(c *fiber.Ctx) error {
	if !validPaystackSignature(c.Body(), h.secrets.Paystack, c.Get(paystackSignatureHeader)) {
		h.log.Warn("paystack signature rejected", zap.String("ip", c.IP()))
		return response.Unauthorized(c)
	}

	var p providerPayload
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}
	ev := webhook.Event{
		Provider:  models.ProviderPaystack,
		EventType: p.Event,
		Reference: p.Data.Reference,
		Amount:    p.Data.Amount.Div(minorUnits),
		Currency:  models.Currency(strings.ToUpper(p.Data.Currency)),
		Payload:   rawPayload(c.Body()),
	}
	if id := deliveryID(p.Data.ID); id != "" {
		ev.EventID = models.ProviderPaystack + ":" + p.Event + ":" + id
	}
	return h.ingest(c, ev)
}

func validPaystackSignature(body []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (h *WebhookHandler) Momo(c *fiber.Ctx) error {
	token := c.Get(momoTokenHeader)
	if h.secrets.Momo == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.secrets.Momo)) != 1 {
		h.log.Warn("momo callback token rejected", zap.String("ip", c.IP()))
		return response.Unauthorized(c)
	}

	var p providerPayload
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}
	ev := webhook.Event{
		Provider:  models.ProviderMomo,
		EventType: p.Event,
		Reference: p.Data.Reference,
		Amount:    p.Data.Amount,
		Currency:  models.Currency(strings.ToUpper(p.Data.Currency)),
		Payload:   rawPayload(c.Body()),
	}
	if id := deliveryID(p.Data.ID); id != "" {
		ev.EventID = models.ProviderMomo + ":" + p.Event + ":" + id
	}
	return h.ingest(c, ev)
}

// Stripe matches payment intents by their "reference" metadata, falling
// back to the intent id.
func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	if h.secrets.Stripe == "" {
		return response.Unauthorized(c)
	}
	event, err := stripewebhook.ConstructEvent(c.Body(), c.Get(stripeSignatureHeader), h.secrets.Stripe)
	if err != nil {
		h.log.Warn("stripe signature rejected", zap.String("ip", c.IP()), zap.Error(err))
		return response.Unauthorized(c)
	}

	ev := webhook.Event{
		Provider:  models.ProviderStripe,
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   rawPayload(c.Body()),
	}
	if strings.HasPrefix(ev.EventType, "payment_intent.") && event.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return response.BadRequest(c, "Invalid payment intent")
		}
		ev.Reference = pi.Metadata["reference"]
		if ev.Reference == "" {
			ev.Reference = pi.ID
		}
		ev.Amount = decimal.NewFromInt(pi.Amount).Div(minorUnits)
		ev.Currency = models.Currency(strings.ToUpper(string(pi.Currency)))
	}
	return h.ingest(c, ev)
}

// ingest acknowledges every handled delivery with 200 so providers stop
// retrying; only transient failures return an error status.
func (h *WebhookHandler) ingest(c *fiber.Ctx, ev webhook.Event) error {
	outcome, err := h.reconciler.Ingest(c.UserContext(), ev)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "", fiber.Map{"status": outcome.String()})
}

// deliveryID accepts both numeric and string provider ids.
func deliveryID(raw json.RawMessage) string {
	id := strings.Trim(string(raw), `"`)
	if id == "null" {
		return ""
	}
	return id
}

func rawPayload(body []byte) map[string]interface{} {
	m := map[string]interface{}{}
	if err := json.Unmarshal(body, &m); err != nil {
		return map[string]interface{}{"raw": string(body)}
	}
	return m
}
