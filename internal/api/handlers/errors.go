package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"mappy/internal/domain"
	"mappy/internal/platform/obs"
	"mappy/internal/platform/report"
)

// writeDomainError maps the error taxonomy onto HTTP statuses. Upstream and
// unexpected failures are reported; caller mistakes are not.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrInvalidMode):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case domain.IsTransport(err):
		log.Warn(op+" upstream failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		report.ReportError(err, map[string]string{"op": op})
		writeError(w, r, http.StatusBadGateway, "upstream service unavailable")
	default:
		log.Error(op+" failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		report.ReportError(err, map[string]string{"op": op})
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.L()
	}
	return l
}
