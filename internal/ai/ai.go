// Package ai is the optional shopping assistant. Gemini answers the
// shopper and may call search_products, which reads the catalog only.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	DefaultModel   = "gemini-1.5-flash"
	searchTool     = "search_products"
	maxToolRounds  = 4
	maxToolResults = 8
)

// ErrDisabled is returned when no API key was configured.
var ErrDisabled = errors.New("assistant is not configured")

// Catalog is the read-only view of the store the tool may use.
type Catalog interface {
	List(ctx context.Context, f models.ProductFilter) (catalog.Page, error)
}

// Assistant holds the Gemini client and the catalog it searches.
type Assistant struct {
	client  *genai.Client
	model   string
	catalog Catalog
	log     *slog.Logger
}

// NewAssistant initializes the Gemini client. An empty key yields a nil
// assistant and no error; callers treat that as "disabled".
func NewAssistant(ctx context.Context, apiKey, model string, c Catalog, log *slog.Logger) (*Assistant, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Assistant{client: client, model: model, catalog: c, log: log}, nil
}

func (a *Assistant) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}

func toolDeclaration() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        searchTool,
				Description: "Searches the store catalog and returns matching products with price and stock.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Free text matched against product names and descriptions.",
						},
						"category": {
							Type:        genai.TypeString,
							Description: "Exact category name, e.g. Electronics.",
						},
						"sort": {
							Type:        genai.TypeString,
							Description: "One of price_asc, price_desc, rating, newest.",
						},
					},
				},
			},
		},
	}
}

// Chat answers one shopper message.
func (a *Assistant) Chat(ctx context.Context, message string) (string, error) {
	if a == nil || a.client == nil {
		return "", ErrDisabled
	}

	// 1. --- Configure the model ---
	model := a.client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{toolDeclaration()}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(`
			You are the store's shopping assistant.
			Use search_products to look up real products before recommending any.
			Quote prices exactly as returned. Be concise and friendly.
			You cannot place orders or change carts; point the shopper to the checkout instead.
		`)},
	}

	// 2. --- Execute Chat ---
	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}

	// 3. --- Answer tool calls until the model replies with text ---
	for round := 0; ; round++ {
		if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
			return "Sorry, I could not come up with an answer.", nil
		}
		part := res.Candidates[0].Content.Parts[0]

		call, ok := part.(genai.FunctionCall)
		if !ok {
			return fmt.Sprintf("%v", part), nil
		}
		if round >= maxToolRounds {
			return "", fmt.Errorf("assistant exceeded %d tool rounds", maxToolRounds)
		}

		a.log.Debug("assistant tool call", "tool", call.Name, "args", call.Args)
		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     call.Name,
			Response: a.runTool(ctx, call.Name, call.Args),
		})
		if err != nil {
			return "", fmt.Errorf("tool response error: %w", err)
		}
	}
}

// runTool executes a function call and returns the payload sent back to
// the model. Failures are reported to the model, not to the shopper.
func (a *Assistant) runTool(ctx context.Context, name string, args map[string]any) map[string]any {
	if name != searchTool {
		return map[string]any{"error": "unknown function " + name}
	}

	f := models.ProductFilter{Limit: maxToolResults}
	if v, ok := args["query"].(string); ok {
		f.Search = strings.TrimSpace(v)
	}
	if v, ok := args["category"].(string); ok {
		f.Category = strings.TrimSpace(v)
	}
	if v, ok := args["sort"].(string); ok {
		f.Sort = models.ProductSort(v)
	}

	page, err := a.catalog.List(ctx, f)
	if err != nil {
		a.log.Warn("assistant catalog search failed", "error", err)
		return map[string]any{"error": "catalog is unavailable"}
	}

	products := make([]map[string]any, 0, len(page.Products))
	for _, p := range page.Products {
		products = append(products, map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"price":    p.Price.StringFixed(2),
			"category": p.Category,
			"brand":    p.Brand,
			"rating":   p.Rating.String(),
			"inStock":  p.Stock > 0,
		})
	}
	return map[string]any{"total": page.Total, "products": products}
}
