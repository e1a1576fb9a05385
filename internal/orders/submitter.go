package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/checkout"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
)

type placer interface {
	Place(ctx context.Context, req PlaceOrderRequest) (*Order, error)
}

// LocalSubmitter places orders through the in-process service.
type LocalSubmitter struct {
	svc placer
}

func NewLocalSubmitter(svc placer) *LocalSubmitter {
	return &LocalSubmitter{svc: svc}
}

func (s *LocalSubmitter) Submit(ctx context.Context, payload cart.OrderPayload) (checkout.Receipt, error) {
	order, err := s.svc.Place(ctx, RequestFromPayload(payload))
	if err != nil {
		return checkout.Receipt{}, err
	}
	return checkout.Receipt{
		OrderID:   order.ID,
		Total:     order.TotalPrice,
		ItemCount: order.TotalNumber,
		CreatedAt: order.CreatedAt,
	}, nil
}

// HTTPSubmitter posts orders to a remote order endpoint.
type HTTPSubmitter struct {
	Client *http.Client
	URL    string
}

// NewHTTPSubmitter builds a submitter with its own client bounded by timeout.
func NewHTTPSubmitter(url string, timeout time.Duration) *HTTPSubmitter {
	return &HTTPSubmitter{Client: &http.Client{Timeout: timeout}, URL: url}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, payload cart.OrderPayload) (checkout.Receipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return checkout.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return checkout.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return checkout.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post order")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return checkout.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return checkout.Receipt{}, remoteError(resp.StatusCode, respBody)
	}
	return decodeReceipt(respBody, payload), nil
}

// decodeReceipt reads the receipt from an envelope or a bare body. Backends
// that answer with something else still count as accepted; the receipt then
// falls back to the submitted figures.
func decodeReceipt(body []byte, payload cart.OrderPayload) checkout.Receipt {
	fallback := checkout.Receipt{Total: payload.Total, ItemCount: payload.ItemCount, CreatedAt: time.Now().UTC()}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	doc := body
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		doc = envelope.Data
	}

	var receipt checkout.Receipt
	if err := json.Unmarshal(doc, &receipt); err != nil {
		return fallback
	}
	if receipt.ItemCount == 0 {
		receipt.Total = fallback.Total
		receipt.ItemCount = fallback.ItemCount
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = fallback.CreatedAt
	}
	return receipt
}

// remoteError keeps client-side rejections typed and turns everything else
// into a dependency failure.
func remoteError(status int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	if status >= 400 && status < 500 && envelope.Error.Code != "" {
		code := pkgerrors.Code(envelope.Error.Code)
		if pkgerrors.MetadataFor(code).HTTPStatus == status {
			return pkgerrors.New(code, envelope.Error.Message).WithDetails(envelope.Error.Details)
		}
	}
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("order endpoint returned %d", status))
}
