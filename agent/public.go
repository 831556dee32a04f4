package agent

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/beancount/beanbuff"
	"github.com/beancount/beanbuff/renderer"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is primarily here to understand his trading activity: what positions he holds,
			how his past trades were matched together, and which chains of trades are still open.

			Devise a plan of questions to ask each expert and come up with the best response to the
			user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounding market questions in search results.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader,
		very well aware of financial products, futures and options markets,
		and the latest news about the different underlyings.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in trading. You can search and find anything related to
			financial instruments, markets, exchanges and underlyings. You leverage Google
			Search to ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}

// NewAnalyst returns the expert in charge of the user's annotated
// transaction table stored in the given file.
func NewAnalyst(table string) *Expert {
	lib := []Function{chainsFunc(table), transactionsFunc(table)}

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. He is in charge of reading the user's transaction table.
		He can list the chains of related trades, tell which ones are still open, and detail
		the individual transactions of any chain.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an analyst in charge of the user's trading history.
				You know how to use the Tools to extract relevant information about the user's
				trades. You are part of a team of experts, yours is everything recorded in the
				transaction table. They might ask you questions about the user's activity,
				pardon their approximative language and figure out what they meant.

				Use the available tools to get information about the user's trades
				  - chains of related trades and their status
				  - the individual transactions of a chain
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

// chainsFunc exposes the chain summaries of the table as a tool.
func chainsFunc(table string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Chains",
			Description: `Chains lists all chains of related trades in the user's transaction table:
			their time span, number of orders, net cost, commissions and fees, and whether the
			position is still open (active) or fully closed.`,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table with one row per chain.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			txs, err := loadTable(table)
			if err != nil {
				return errorResponse(id, "Chains", err)
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "Chains",
				Response: map[string]any{
					"output": renderer.ChainSummaries(beanbuff.BuildChainSummaries(txs)),
				},
			}
		},
	}
}

// transactionsFunc exposes the member rows of one chain as a tool.
func transactionsFunc(table string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Transactions",
			Description: `Transactions lists the individual transactions of one chain, identified by
			its chain id as reported by the Chains tool.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"chain": {
						Type:        genai.TypeString,
						Description: "The chain id whose transactions to list.",
					},
				},
				Required: []string{"chain"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table with one row per transaction of the chain.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			chain, ok := args["chain"].(string)
			if !ok {
				return errorResponse(id, "Transactions", fmt.Errorf("argument 'chain' is not a string but %T", args["chain"]))
			}
			txs, err := loadTable(table)
			if err != nil {
				return errorResponse(id, "Transactions", err)
			}
			var members []beanbuff.Transaction
			for _, tx := range txs {
				if tx.ChainID == chain {
					members = append(members, tx)
				}
			}
			if len(members) == 0 {
				return errorResponse(id, "Transactions", fmt.Errorf("no chain %q in the table", chain))
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "Transactions",
				Response: map[string]any{
					"output": renderer.Transactions(members),
				},
			}
		},
	}
}

func loadTable(table string) ([]beanbuff.Transaction, error) {
	f, err := os.Open(table)
	if err != nil {
		return nil, fmt.Errorf("could not open transaction table %q: %w", table, err)
	}
	defer f.Close()
	return beanbuff.DecodeTransactions(f)
}
