package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"quote-service/internal/config"
	"quote-service/internal/quote/agent"
	"quote-service/internal/quote/engine"
	"quote-service/internal/quote/model"
	"quote-service/internal/quote/schema"
	"quote-service/internal/supplier"
	"quote-service/internal/websearch"
)

const noPriceColumnMsg = "当前表格未检测到可写入的报价列（例如：单价1/是否含税1/是否含运1/货期1）。请上传包含报价列的询价表，或调整表头命名。"

// Handler wires the chat resolution pipeline: schema inference, the
// two-stage agent with its tools, validation and the sheet mutation.
type Handler struct {
	cfg       config.Config
	log       zerolog.Logger
	oracle    agent.Oracle
	suppliers *supplier.Store
	search    *websearch.Client
}

func New(cfg config.Config, logger zerolog.Logger, oracle agent.Oracle, suppliers *supplier.Store, search *websearch.Client) *Handler {
	return &Handler{cfg: cfg, log: logger, oracle: oracle, suppliers: suppliers, search: search}
}

func (h *Handler) Chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		log := h.requestLogger(r)

		var req model.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		grid := req.CurrentSheetData
		s := schema.Build(grid)
		if !s.HasPriceColumn() {
			writeJSON(w, model.ChatResponse{Action: "ASK", Content: noPriceColumnMsg})
			return
		}

		bundle := buildBundle(grid, s, req.Message, h.cfg.FuzzyThreshold)
		tools := h.buildTools(grid, s)
		history := trimHistory(req.ChatHistory)

		res := agent.RunTwoStage(r.Context(), h.oracle, req.Message, history, bundle, tools, h.cfg.MaxToolSteps)

		switch res.Action {
		case "ASK":
			content := res.Content
			if content == "" {
				content = "请提供更多信息"
			}
			writeJSON(w, model.ChatResponse{Action: "ASK", Content: content})
		case "WRITE":
			writeJSON(w, h.applyWrite(r.Context(), log, grid, s, req.Message, res))
		default:
			writeJSON(w, model.ChatResponse{Action: "ASK", Content: "未知指令"})
		}
	}
}

// buildTools closes the per-request tool set over the sheet. Tools never
// mutate the grid; writes happen only through the validated WRITE path.
func (h *Handler) buildTools(grid [][]any, s *schema.Schema) *agent.Registry {
	tools := agent.NewRegistry()

	tools.Register("locate_row", "按物料/品牌/型号或明确行号定位候选行",
		map[string]string{"item_name": "str?", "brand": "str?", "model": "str?", "spec": "str?", "target_row": "int?"},
		func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if tr := model.CoerceInt(args["target_row"]); tr > 1 && tr <= len(grid) {
				return map[string]any{
					"candidates": []model.CandidateRow{{Row: tr}},
					"ambiguous":  false,
				}, nil
			}
			c := schema.Criteria{
				ItemName: firstString(args, "item_name", "lookup_item"),
				Brand:    firstString(args, "brand", "lookup_brand"),
				Model:    firstString(args, "model", "lookup_model"),
				Spec:     firstString(args, "spec", "lookup_spec"),
			}
			located := schema.Locate(grid, c, schema.Params{WeakNameLen: h.cfg.WeakNameLen})
			return map[string]any{"candidates": located.Candidates, "ambiguous": located.Ambiguous}, nil
		})

	tools.Register("get_row_slot_snapshot", "获取指定行的slot分组快照",
		map[string]string{"row": "int"},
		func(ctx context.Context, args map[string]any) (map[string]any, error) {
			row := model.CoerceInt(args["row"])
			if row == 0 {
				return map[string]any{"row": nil, "snapshot": nil}, nil
			}
			return map[string]any{"row": row, "snapshot": s.SlotSnapshot(grid, row, 3)}, nil
		})

	tools.Register("supplier_lookup", "按人名/简称查供应商字符串（一个单元格）",
		map[string]string{"name": "str"},
		func(ctx context.Context, args map[string]any) (map[string]any, error) {
			name := firstString(args, "name", "lookup_supplier")
			cell := h.lookupSupplierCell(ctx, name)
			if cell == "" {
				return map[string]any{"supplier": nil}, nil
			}
			return map[string]any{"supplier": cell}, nil
		})

	tools.Register("web_search_supplier", "联网搜索品牌的代理商/经销商联系方式",
		map[string]string{"brand": "str"},
		func(ctx context.Context, args map[string]any) (map[string]any, error) {
			brand := model.CoerceString(args["brand"])
			if strings.TrimSpace(brand) == "" {
				return map[string]any{"results_text": "无"}, nil
			}
			results, err := h.search.SearchSuppliers(ctx, brand)
			if err != nil {
				return nil, err
			}
			return map[string]any{"results_text": websearch.FormatResults(brand, results)}, nil
		})

	return tools
}

// applyWrite validates and executes a WRITE outcome, batch or single.
func (h *Handler) applyWrite(ctx context.Context, log zerolog.Logger, grid [][]any, s *schema.Schema, message string, res agent.Result) model.ChatResponse {
	required := s.RequiredFields()
	explicitRow := schema.ExtractRowFromMessage(message)

	if res.Updates != nil {
		if len(res.Updates) == 0 {
			return model.ChatResponse{Action: "ASK", Content: "LLM未返回可执行的更新列表"}
		}
		updates := res.Updates
		if len(updates) > maxUpdatesPerBatch {
			updates = updates[:maxUpdatesPerBatch]
		}
		// Invalid items drop out without aborting the rest of the batch;
		// only a fully unusable batch turns into a question.
		var (
			updatedRows []int
			applied     []map[string]any
			missingAll  []string
		)
		for _, data := range updates {
			if model.CoerceInt(data["target_row"]) == 0 && explicitRow > 0 {
				data["target_row"] = explicitRow
			}
			if missing := missingFields(data, required); len(missing) > 0 {
				missingAll = mergeMissing(missingAll, missing)
				continue
			}
			h.fillSupplier(ctx, data)
			act := model.DecodeUpdate(data)
			grid = engine.ApplyUpdate(grid, s, act)
			h.sedimentSupplier(ctx, log, act)
			updatedRows = append(updatedRows, act.TargetRow)
			applied = append(applied, data)
		}
		if len(updatedRows) == 0 {
			return model.ChatResponse{Action: "ASK", Content: "更新列表中没有可执行的更新项，请补充：" + strings.Join(missingAll, ", ")}
		}
		content := "报价已更新 (行 " + formatRows(updatedRows) + ")"
		if skipped := len(updates) - len(updatedRows); skipped > 0 {
			content += fmt.Sprintf("，已跳过%d项不完整报价", skipped)
		}
		return model.ChatResponse{
			Action:       "WRITE",
			Content:      content,
			Data:         applied,
			UpdatedSheet: grid,
		}
	}

	data := res.Data
	if data == nil {
		data = map[string]any{}
	}
	if model.CoerceInt(data["target_row"]) == 0 && explicitRow > 0 {
		data["target_row"] = explicitRow
	}

	// An explicit row in the message overrides ambiguity; otherwise an
	// unresolved multi-candidate locate turns into a question.
	if explicitRow == 0 && model.CoerceInt(data["target_row"]) == 0 {
		if candidates, ambiguous, found := lastLocateCandidates(res.ToolResults); found {
			if ambiguous || len(candidates) > 1 {
				return model.ChatResponse{
					Action:  "ASK",
					Content: "匹配到多个候选，请指定第X行或补充型号/规格：" + renderCandidates(candidates),
				}
			}
		}
	}

	if missing := missingFields(data, required); len(missing) > 0 {
		return model.ChatResponse{Action: "ASK", Content: "请补充：" + strings.Join(missing, ", ")}
	}

	h.fillSupplier(ctx, data)
	act := model.DecodeUpdate(data)
	grid = engine.ApplyUpdate(grid, s, act)
	h.sedimentSupplier(ctx, log, act)

	return model.ChatResponse{
		Action:       "WRITE",
		Content:      "报价已更新 (行 " + formatRows([]int{act.TargetRow}) + ")",
		Data:         data,
		UpdatedSheet: grid,
	}
}

// fillSupplier resolves a lookup_supplier reference into a concrete
// supplier cell when the payload has none.
func (h *Handler) fillSupplier(ctx context.Context, data map[string]any) {
	name := model.CoerceString(data["lookup_supplier"])
	if name == "" || model.CoerceString(data["supplier"]) != "" {
		return
	}
	if cell := h.lookupSupplierCell(ctx, name); cell != "" {
		data["supplier"] = cell
	}
}

func (h *Handler) lookupSupplierCell(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return h.suppliers.LookupCell(ctx, name)
}

// sedimentSupplier persists a supplier seen in an applied quote so later
// sessions can resolve it by name.
func (h *Handler) sedimentSupplier(ctx context.Context, log zerolog.Logger, act model.UpdateAction) {
	if act.Supplier == "" {
		return
	}
	info := supplier.Extract(act.Supplier, act.OfferBrand)
	if info == nil {
		return
	}
	if err := h.suppliers.Upsert(ctx, info); err != nil {
		log.Error().Err(err).Str("supplier", info.CompanyName).Msg("supplier sediment failed")
	}
}

func (h *Handler) requestLogger(r *http.Request) zerolog.Logger {
	if rid := r.Header.Get("X-Request-ID"); rid != "" {
		return h.log.With().Str("req_id", rid).Logger()
	}
	return h.log
}

func firstString(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := model.CoerceString(args[k]); s != "" {
			return s
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
