// Package server exposes the pricer and normalizer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/contactkeval/option-heatmap/internal/logger"
	"github.com/contactkeval/option-heatmap/internal/pricing"
	"github.com/contactkeval/option-heatmap/internal/scale"
)

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

// PriceRequest is the body of POST /price. call_price and put_price, when
// set, centre the raw scale and are the profit/loss baseline.
type PriceRequest struct {
	pricing.MarketParams
	pricing.Purchase
	Palette    scale.PaletteKey `json:"palette,omitempty"`
	ProfitLoss bool             `json:"profit_loss,omitempty"`
}

// Surface is one priced grid ready to draw.
type Surface struct {
	Values [][]float64      `json:"values"`
	Norm   scale.Descriptor `json:"norm"`
	Colors [][]string       `json:"colors"`
}

// PriceResponse is the body returned by POST /price.
type PriceResponse struct {
	Spots      pricing.Axis     `json:"spots"`
	Strikes    pricing.Axis     `json:"strikes"`
	Palette    scale.PaletteKey `json:"palette"`
	ProfitLoss bool             `json:"profit_loss"`
	Call       Surface          `json:"call"`
	Put        Surface          `json:"put"`
}

type paletteResponse struct {
	Name string `json:"name"`
	Low  string `json:"low"`
	Mid  string `json:"mid"`
	High string `json:"high"`
}

// NewRouter wires the HTTP routes. defaultPalette is used when a request
// does not name one.
func NewRouter(defaultPalette scale.PaletteKey) *mux.Router {
	h := &handler{defaultPalette: defaultPalette}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/palettes", h.palettes).Methods(http.MethodGet)
	r.HandleFunc("/price", h.price).Methods(http.MethodPost)
	r.Use(logRequests)
	return r
}

// ListenAndServe serves the router on addr until it fails.
func ListenAndServe(addr string, defaultPalette scale.PaletteKey) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(defaultPalette),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Infof("starting REST server on %s", addr)
	return srv.ListenAndServe()
}

type handler struct {
	defaultPalette scale.PaletteKey
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *handler) palettes(w http.ResponseWriter, r *http.Request) {
	var out []paletteResponse
	for _, key := range scale.Keys() {
		p, err := scale.Lookup(key)
		if err != nil {
			setErrorResponse(w, "palettes", http.StatusInternalServerError, err)
			return
		}
		out = append(out, paletteResponse{Name: string(p.Name), Low: p.Low.Hex(), Mid: p.Mid.Hex(), High: p.High.Hex()})
	}
	setResponse(w, out)
}

func (h *handler) price(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse(w, "bad_request", http.StatusBadRequest, fmt.Errorf("decode: %w", err))
		return
	}

	resp, err := Price(req, h.defaultPalette)
	switch {
	case errors.Is(err, pricing.ErrInvalidParams), errors.Is(err, scale.ErrUnknownPalette):
		setErrorResponse(w, "validation", http.StatusBadRequest, err)
		return
	case err != nil:
		setErrorResponse(w, "internal", http.StatusInternalServerError, err)
		return
	}

	setResponse(w, resp)
}

// Price runs a request through the pricer and the normalizer. In raw price
// mode each surface is centred on its purchase price, or on its own
// at-the-money cell when none was given.
func Price(req PriceRequest, defaultPalette scale.PaletteKey) (PriceResponse, error) {
	key := req.Palette
	if key == "" {
		key = defaultPalette
	}
	palette, err := scale.Lookup(key)
	if err != nil {
		return PriceResponse{}, err
	}

	call, put, err := pricing.PriceChecked(req.MarketParams)
	if err != nil {
		return PriceResponse{}, err
	}
	if err := req.Purchase.Validate(); err != nil {
		return PriceResponse{}, err
	}

	callRef := pricing.Reference(call, req.Purchase.Call)
	putRef := pricing.Reference(put, req.Purchase.Put)
	if req.ProfitLoss {
		call, put = pricing.ProfitLoss(call, put, &callRef, &putRef)
	}

	callSurface, err := surface(call, palette, callRef, req.ProfitLoss)
	if err != nil {
		return PriceResponse{}, fmt.Errorf("call surface: %w", err)
	}
	putSurface, err := surface(put, palette, putRef, req.ProfitLoss)
	if err != nil {
		return PriceResponse{}, fmt.Errorf("put surface: %w", err)
	}

	return PriceResponse{
		Spots:      call.Spots,
		Strikes:    call.Strikes,
		Palette:    palette.Name,
		ProfitLoss: req.ProfitLoss,
		Call:       callSurface,
		Put:        putSurface,
	}, nil
}

func surface(g pricing.Grid, palette scale.Palette, ref float64, profitLoss bool) (Surface, error) {
	opts := scale.WithReference(ref)
	if profitLoss {
		opts = scale.ProfitLoss()
	}

	d, err := scale.Normalize(g, opts)
	if err != nil {
		return Surface{}, err
	}

	colors := make([][]string, g.Rows())
	for i := range colors {
		colors[i] = make([]string, g.Cols())
		for j := range colors[i] {
			colors[i][j] = palette.Color(g.At(i, j), d).Hex()
		}
	}
	return Surface{Values: g.Values, Norm: d, Colors: colors}, nil
}

func setResponse(w http.ResponseWriter, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("encode response: %v", err)
	}
}

func setErrorResponse(w http.ResponseWriter, errType string, statusCode int, err error) {
	logger.Debugf("%s error: %v", errType, err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(errorResponse{Type: errType, Msg: err.Error()}); encodeErr != nil {
		logger.Errorf("encode error response: %v", encodeErr)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.WithField("elapsed", time.Since(start)).Debugf("%s %s", r.Method, r.URL.Path)
	})
}
