package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"planfact-service/internal/config"
	"planfact-service/internal/fileio"
	"planfact-service/internal/planfact/engine"
	"planfact-service/internal/planfact/export"
	"planfact-service/internal/planfact/mapper"
	"planfact-service/internal/planfact/model"
	"planfact-service/internal/planfact/quality"
	"planfact-service/internal/planfact/summary"
	"planfact-service/internal/planfact/wide"
)

// Response — полный результат анализа одной пары файлов.
type Response struct {
	Rows           []model.ReconciledRow `json:"rows"`
	StoreSummary   []model.Summary       `json:"storeSummary"`
	SegmentSummary []model.Summary       `json:"segmentSummary"`
	Problems       []model.Summary       `json:"problemStores"`
	Stores         []string              `json:"stores"`
	Detail         *Detail               `json:"detail,omitempty"`
	Quality        Quality               `json:"quality"`
	Warnings       []string              `json:"warnings,omitempty"`
}

// Quality — отчёты о качестве обоих исходников.
type Quality struct {
	Plan []quality.ColumnStat `json:"plan"`
	Fact []quality.ColumnStat `json:"fact"`
}

// Detail — детальный анализ магазина с необязательными фильтрами.
type Detail struct {
	Store   string                `json:"store"`
	Segment string                `json:"segment,omitempty"`
	Brand   string                `json:"brand,omitempty"`
	Metrics model.Metrics         `json:"metrics"`
	Top     []model.ReconciledRow `json:"topDeviations"`
	Rows    []model.ReconciledRow `json:"rows"`
}

// Analyze возвращает http.HandlerFunc для r.Post("/analyze", ...).
func Analyze(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)

		res, err := run(r)
		if err != nil {
			writeError(w, log, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Int("rows", len(res.Rows)).
			Int("stores", len(res.Stores)).
			Int("problems", len(res.Problems)).
			Dur("elapsed", time.Since(start)).
			Msg("analyze done")
	}
}

// Export — тот же конвейер, но ответ — xlsx выбранной таблицы.
func Export(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)

		res, err := run(r)
		if err != nil {
			writeError(w, log, err)
			return
		}

		store := strings.TrimSpace(r.FormValue("store"))
		var sheet export.Sheet
		switch r.FormValue("table") {
		case "stores":
			sheet = export.SummarySheet(res.StoreSummary, false)
		case "segments":
			sheet = export.SummarySheet(res.SegmentSummary, true)
		case "problems":
			sheet = export.SummarySheet(res.Problems, false)
		default: // rows
			rows := res.Rows
			if store != "" {
				rows = summary.Filter(rows, store, r.FormValue("segment"), r.FormValue("brand"))
			}
			sheet = export.ReconciledSheet(rows)
		}

		b, err := export.ToXLSX(sheet)
		if err != nil {
			log.Error().Err(err).Msg("xlsx serialize")
			http.Error(w, "failed to build xlsx: "+err.Error(), http.StatusInternalServerError)
			return
		}

		name := export.Filename(store, time.Now())
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(b)

		log.Info().
			Str("file", name).
			Int("bytes", len(b)).
			Dur("elapsed", time.Since(start)).
			Msg("export done")
	}
}

// run — весь конвейер: чтение файлов → маппинг/нормализация → outer join →
// своды → отбор проблемных → детальный срез. Состояния между запросами
// нет: каждый запрос несёт оба файла и весь маппинг.
func run(r *http.Request) (*Response, error) {
	defer r.Body.Close()
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return nil, badInput("bad multipart form: " + err.Error())
	}

	planTab, err := readUpload(r, "plan", atoi(r.FormValue("plan_header_row"), 1))
	if err != nil {
		return nil, err
	}
	factTab, err := readUpload(r, "fact", atoi(r.FormValue("fact_header_row"), 1))
	if err != nil {
		return nil, err
	}

	res := &Response{
		Quality: Quality{
			Plan: quality.Analyze(planTab.Headers, planTab.Rows),
			Fact: quality.Analyze(factTab.Headers, factTab.Rows),
		},
	}

	// План: плоский или широкий формат
	planMap := planMapping(r)
	if r.FormValue("plan_format") == "wide" {
		idCols := splitList(r.FormValue("plan_id_cols"))
		if len(idCols) == 0 {
			return nil, badInput("для широкого формата нужны идентификационные колонки товара (plan_id_cols)")
		}
		flat, warns, err := wide.Flatten(planTab, idCols)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, warns...)
		planTab = flat
		// тройки уже переименованы в канонические колонки
		planMap.Store = model.FieldStore
		planMap.PlanQty = model.FieldPlanQty
		planMap.PlanAmount = model.FieldPlanAmount
	}

	planRows, planStats, err := mapper.Clean(planTab, planMap, model.RequiredPlanFields, "план")
	if err != nil {
		return nil, err
	}
	factMap := factMapping(r)
	factRows, factStats, err := mapper.Clean(factTab, factMap, model.RequiredFactFields, "факт")
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, statsWarnings("план", planStats)...)
	res.Warnings = append(res.Warnings, statsWarnings("факт", factStats)...)

	rows := engine.Reconcile(planRows, factRows, engine.KeyFor(planStats.Resolved, factStats.Resolved))
	res.Rows = rows
	res.Stores = summary.Stores(rows)
	res.StoreSummary = summary.ByStore(rows)
	res.SegmentSummary = summary.ByStoreSegment(rows)

	threshold := toDecimal(r.FormValue("threshold"), 10)
	res.Problems = summary.Problems(res.StoreSummary, threshold, sortKey(r.FormValue("sort_by")))

	if store := strings.TrimSpace(r.FormValue("store")); store != "" {
		segment := strings.TrimSpace(r.FormValue("segment"))
		brand := strings.TrimSpace(r.FormValue("brand"))
		cut := summary.Filter(rows, store, segment, brand)
		res.Detail = &Detail{
			Store:   store,
			Segment: segment,
			Brand:   brand,
			Metrics: summary.Metrics(cut),
			Top:     summary.TopDeviations(cut, atoi(r.FormValue("top"), 20)),
			Rows:    cut,
		}
	}
	return res, nil
}

func readUpload(r *http.Request, field string, headerRow int) (fileio.Table, error) {
	f, fh, err := r.FormFile(field)
	if err != nil {
		return fileio.Table{}, badInput("missing " + field + " file: " + err.Error())
	}
	defer f.Close()
	t, err := fileio.ReadAny(f, fh.Filename, headerRow)
	if err != nil {
		return fileio.Table{}, badInput("failed to read " + field + ": " + err.Error())
	}
	return t, nil
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := http.StatusInternalServerError
	var miss *model.MissingRequiredFieldError
	var ambig *model.AmbiguousMappingError
	var wideErr *model.UnrecognizedWideLayoutError
	var bad *inputError
	switch {
	case errors.As(err, &miss), errors.As(err, &ambig), errors.As(err, &wideErr), errors.As(err, &bad):
		status = http.StatusBadRequest
	}
	log.Warn().Err(err).Int("status", status).Msg("analyze failed")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func reqLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := r.Header.Get("X-Request-ID"); rid != "" {
		return logger.With().Str("req_id", rid).Logger()
	}
	return logger
}
