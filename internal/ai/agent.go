package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roti-erp/internal/logger"
	"roti-erp/internal/services"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	DefaultModel  = "gemini-2.0-flash-001"
	maxToolRounds = 5
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("assistant is not configured")

// Agent answers questions about the business by letting Gemini call into
// the report and inventory services.
type Agent struct {
	apiKey    string
	model     string
	reports   *services.ReportService
	inventory *services.InventoryService
	now       func() time.Time
}

func NewAgent(apiKey, model string, reports *services.ReportService, inventory *services.InventoryService) *Agent {
	if model == "" {
		model = DefaultModel
	}
	return &Agent{apiKey: apiKey, model: model, reports: reports, inventory: inventory, now: time.Now}
}

// Configured reports whether Ask can reach the model.
func (a *Agent) Configured() bool {
	return a != nil && a.apiKey != ""
}

// Ask runs one question through the model, executing tool calls until the
// model answers in text.
func (a *Agent) Ask(ctx context.Context, message string) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(a.systemPrompt())}}
	model.Tools = Tools()

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return textOf(resp), nil
		}

		// --- HANDLE TOOL CALLS ---
		var replies []genai.Part
		for _, call := range calls {
			result, err := a.CallTool(ctx, call.Name, call.Args)
			if err != nil {
				logger.FromContext(ctx).Warn("Assistant tool failed", zap.String("tool", call.Name), zap.Error(err))
				result = map[string]any{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return textOf(resp), nil
}

func (a *Agent) systemPrompt() string {
	today := a.now().Format("2006-01-02")
	return fmt.Sprintf(`Today is %s. You are the assistant of a roti bakery ERP.

RULES:
1. SALES: for revenue, order counts or average order value use 'get_sales_report'.
2. PROFIT: for expenses, net profit or margin use 'get_profit_loss'.
3. STOCK: for packets delivered, sold or remaining at a counter use 'check_counter_inventory'.
4. Periods are one of today, yesterday, this-week, last-week, this-month, last-month, this-year,
   or custom with start_date and end_date (YYYY-MM-DD, end date included).
5. Amounts are in the shop currency with two decimals. Never invent numbers.`, today)
}

// Tools declares the functions the model may call.
func Tools() []*genai.Tool {
	period := map[string]*genai.Schema{
		"period":     {Type: genai.TypeString, Description: "today, yesterday, this-week, last-week, this-month, last-month, this-year or custom"},
		"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD) for custom periods"},
		"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), included"},
	}
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "get_sales_report",
				Description: "Total sales, order count and average order value for a period, with a daily series.",
				Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: period},
			},
			{
				Name:        "get_profit_loss",
				Description: "Revenue, approved expenses by category, net profit and margin for a period.",
				Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: period},
			},
			{
				Name:        "check_counter_inventory",
				Description: "Packets delivered, sold and remaining per packet size at one counter on one day.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"counter_id": {Type: genai.TypeInteger, Description: "ID of the counter"},
						"date":       {Type: genai.TypeString, Description: "Business date (YYYY-MM-DD), today when omitted"},
					},
					Required: []string{"counter_id"},
				},
			},
		},
	}}
}

// CallTool executes one tool by name. Results are plain JSON maps so they
// can be handed back to the model.
func (a *Agent) CallTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "get_sales_report":
		report, err := a.reports.Sales(ctx, services.SalesQuery{PeriodQuery: periodArgs(args)})
		if err != nil {
			return nil, err
		}
		return toMap(map[string]any{
			"period":    report.Period,
			"summary":   report.Summary,
			"chartData": report.ChartData,
		})
	case "get_profit_loss":
		pl, err := a.reports.ProfitLoss(ctx, periodArgs(args))
		if err != nil {
			return nil, err
		}
		return toMap(pl)
	case "check_counter_inventory":
		id, ok := args["counter_id"].(float64)
		if !ok || id < 1 {
			return nil, errors.New("counter_id must be a positive integer")
		}
		date, _ := args["date"].(string)
		rows, err := a.inventory.DailyInventory(ctx, uint(id), date)
		if err != nil {
			return nil, err
		}
		return toMap(map[string]any{"counterId": uint(id), "date": date, "inventory": rows})
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

func periodArgs(args map[string]any) services.PeriodQuery {
	var q services.PeriodQuery
	q.Period, _ = args["period"].(string)
	q.StartDate, _ = args["start_date"].(string)
	q.EndDate, _ = args["end_date"].(string)
	return q
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I could not find an answer."
}
