package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cvscreener/internal/models"
	"cvscreener/internal/repositories"
	"cvscreener/internal/services"
)

type AnalyzeHandler struct {
	runRepo     repositories.RunRepository
	worker      services.Worker
	maxFileSize int64
}

func NewAnalyzeHandler(
	runRepo repositories.RunRepository,
	worker services.Worker,
	maxFileSize int64,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		runRepo:     runRepo,
		worker:      worker,
		maxFileSize: maxFileSize,
	}
}

// HandleAnalyze handles POST /analyze: a job description plus one or
// more CV files (multipart field "cvs"), queued as one analysis run.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	jobTitle := formValue(form, "job_title")
	jobDescription := formValue(form, "job_description")

	if jobTitle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_title is required",
		})
	}
	if jobDescription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description is required",
		})
	}

	files := form.File["cvs"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "at least one CV file is required (multipart field \"cvs\")",
		})
	}

	documents := make([]models.RawDocument, 0, len(files))
	for _, file := range files {
		doc, err := h.readDocument(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		documents = append(documents, doc)
	}

	run := &models.AnalysisRun{
		ID:             uuid.New(),
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		Documents:      documents,
		Status:         models.StatusQueued,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.runRepo.Create(run); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create analysis run",
		})
	}

	h.worker.EnqueueRun(run.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		ID:        run.ID.String(),
		Status:    string(models.StatusQueued),
		Documents: len(documents),
	})
}

func (h *AnalyzeHandler) readDocument(file *multipart.FileHeader) (models.RawDocument, error) {
	if file.Size > h.maxFileSize {
		return models.RawDocument{}, fmt.Errorf("file %q too large, max size: %d bytes", file.Filename, h.maxFileSize)
	}

	format, ok := models.FormatFromFileName(file.Filename)
	if !ok {
		return models.RawDocument{}, fmt.Errorf("unsupported file type for %q, expected pdf, docx or txt", file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return models.RawDocument{}, fmt.Errorf("failed to open file %q", file.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.RawDocument{}, fmt.Errorf("failed to read file %q", file.Filename)
	}

	return models.RawDocument{
		FileName: file.Filename,
		Format:   format,
		Bytes:    data,
	}, nil
}

func formValue(form *multipart.Form, key string) string {
	if values, ok := form.Value[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
