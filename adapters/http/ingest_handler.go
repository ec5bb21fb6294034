package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ingestUC "github.com/talentforge/candidate-os/internal/application/usecase/ingest"
	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type IngestHandler struct {
	processor *ingestUC.Processor
	logger    logger.Logger
}

func NewIngestHandler(processor *ingestUC.Processor, log logger.Logger) *IngestHandler {
	return &IngestHandler{processor: processor, logger: log}
}

// RunBatch processes the posted records synchronously and returns the batch
// report. Re-posting the same batch_id resumes it: already-persisted records
// are skipped.
func (h *IngestHandler) RunBatch(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid ingest request body", err))
		return
	}
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}

	records := make([]candidate.RawRecord, len(req.Records))
	for i, r := range req.Records {
		records[i] = candidate.RawRecord(r)
	}

	report, err := h.processor.Run(c.Request.Context(), ingest.Batch{ID: req.BatchID, Records: records})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToBatchReportDTO(report))
}
