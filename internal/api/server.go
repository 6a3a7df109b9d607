// Package api serves link encoding and decoding over a local HTTP API.
package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lotas/tablink/internal/linkcodec"
)

type encodeInput struct {
	Body struct {
		Addresses []string `json:"addresses" required:"true" doc:"Addresses to share, scheme optional"`
		BaseURL   string   `json:"base_url,omitempty" doc:"Overrides the server's base URL"`
	}
}

type encodeOutput struct {
	Body struct {
		Link  string `json:"link"`
		Count int    `json:"count"`
	}
}

type decodeInput struct {
	Body struct {
		Link string `json:"link" required:"true"`
	}
}

type decodeOutput struct {
	Body struct {
		Found     bool     `json:"found"`
		Addresses []string `json:"addresses"`
	}
}

// NewServer returns the API router. Links are generated against base unless
// a request names its own base URL.
func NewServer(base linkcodec.Location) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("tablink API", "1.0.0")
	api := humachi.New(router, cfg)

	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "encode-link", Method: http.MethodPost, Path: "/api/v1/links", Summary: "Encode addresses into a shareable link", Tags: []string{"Links"}},
		func(ctx context.Context, input *encodeInput) (*encodeOutput, error) {
			loc := base
			if input.Body.BaseURL != "" {
				parsed, err := linkcodec.ParseLocation(input.Body.BaseURL)
				if err != nil {
					return nil, huma.Error400BadRequest(err.Error())
				}
				loc = parsed
			}
			link := linkcodec.Encode(loc, input.Body.Addresses)
			if link == "" {
				return nil, huma.Error400BadRequest("no non-blank addresses")
			}
			out := &encodeOutput{}
			out.Body.Link = link
			out.Body.Count = len(linkcodec.Filter(input.Body.Addresses))
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "decode-link", Method: http.MethodPost, Path: "/api/v1/links/decode", Summary: "Decode the addresses carried by a link", Tags: []string{"Links"}},
		func(ctx context.Context, input *decodeInput) (*decodeOutput, error) {
			loc, err := linkcodec.ParseLocation(input.Body.Link)
			if err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}
			out := &decodeOutput{}
			out.Body.Addresses = []string{}
			if addrs, ok := linkcodec.DecodeLocation(loc); ok {
				out.Body.Found = true
				out.Body.Addresses = addrs
			}
			return out, nil
		})

	return router
}
