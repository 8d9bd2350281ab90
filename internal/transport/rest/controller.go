package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/KotFed0t/portfolio_analyzer/internal/converter/httpConverter"
	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/internal/model/httpModel"
	"github.com/KotFed0t/portfolio_analyzer/internal/service"
	"github.com/KotFed0t/portfolio_analyzer/utils"
)

const (
	maxBodyBytes   = 1 << 20
	internalErrMsg = "internal error"
)

type AnalysisService interface {
	Analyze(ctx context.Context, holdings []model.Holding) (model.PortfolioSummary, error)
	AnalyzeReport(ctx context.Context, holdings []model.Holding) (fileBytes []byte, fileExtension string, err error)
	SupportedSymbols() []string
	Currency() string
}

type Controller struct {
	analysisService AnalysisService
}

func NewController(analysisService AnalysisService) *Controller {
	_ = mime.AddExtensionType(".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return &Controller{analysisService: analysisService}
}

func (ctrl *Controller) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	holdings, ok := ctrl.decodeHoldings(w, r)
	if !ok {
		return
	}

	summary, err := ctrl.analysisService.Analyze(ctx, holdings)
	if err != nil {
		ctrl.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, httpConverter.ConvertSummaryToAnalyzeResponse(summary))
}

func (ctrl *Controller) AnalyzeReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rqID := utils.GetRequestIDFromCtx(ctx)

	holdings, ok := ctrl.decodeHoldings(w, r)
	if !ok {
		return
	}

	fileBytes, ext, err := ctrl.analysisService.AnalyzeReport(ctx, holdings)
	if err != nil {
		ctrl.writeServiceError(ctx, w, err)
		return
	}

	filename := fmt.Sprintf("portfolio_%s%s", time.Now().Format("2006-01-02"), ext)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(fileBytes); err != nil {
		slog.Error("can't write report", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}

func (ctrl *Controller) Symbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, httpModel.SymbolsResponse{
		Symbols:  ctrl.analysisService.SupportedSymbols(),
		Currency: ctrl.analysisService.Currency(),
	})
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ctrl *Controller) decodeHoldings(w http.ResponseWriter, r *http.Request) ([]model.Holding, bool) {
	ctx := r.Context()
	rqID := utils.GetRequestIDFromCtx(ctx)

	req := httpModel.AnalyzeRequest{}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		slog.Info("can't decode analyze request", slog.String("rqID", rqID), slog.String("err", err.Error()))
		writeJSON(ctx, w, http.StatusBadRequest, httpModel.ErrorResponse{Detail: "Invalid request body"})
		return nil, false
	}

	return httpConverter.ConvertAnalyzeRequestToHoldings(req), true
}

func (ctrl *Controller) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if service.IsClientError(err) {
		writeJSON(ctx, w, http.StatusBadRequest, httpModel.ErrorResponse{Detail: err.Error()})
		return
	}

	slog.Error("got error from analysisService", slog.String("rqID", rqID), slog.String("err", err.Error()))
	writeJSON(ctx, w, http.StatusInternalServerError, httpModel.ErrorResponse{Detail: internalErrMsg})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("can't encode response", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
	}
}
