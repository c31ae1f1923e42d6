package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gateworks-backend/services"
	"gateworks-backend/utils"
)

type DeleteUploadInput struct {
	URL string `json:"url" binding:"required"`
}

// MediaController exposes the image pipeline to the admin panel.
type MediaController struct {
	Pipeline *services.ImagePipeline
	MaxFiles int
	MaxBytes int64
}

func (mc *MediaController) readFile(fh *multipart.FileHeader) (services.UploadFile, error) {
	file := services.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	// Oversized files are rejected by the pipeline without reading them.
	if mc.MaxBytes > 0 && fh.Size > mc.MaxBytes {
		return file, nil
	}

	f, err := fh.Open()
	if err != nil {
		return file, err
	}
	defer f.Close()

	r := io.Reader(f)
	if mc.MaxBytes > 0 {
		r = io.LimitReader(f, mc.MaxBytes+1)
	}
	file.Data, err = io.ReadAll(r)
	return file, err
}

// Upload accepts multipart "files" plus an optional uuid "entity_id" and stores
// them under the :folder path segment.
func (mc *MediaController) Upload(c *gin.Context) {
	folder, ok := services.ParseFolder(c.Param("folder"))
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown upload folder")
		return
	}

	// Entity ids are uuids and become one segment of the object key.
	entityID := strings.TrimSpace(c.PostForm("entity_id"))
	if entityID != "" {
		id, err := uuid.Parse(entityID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid entity ID format")
			return
		}
		entityID = id.String()
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No files provided")
		return
	}
	if mc.MaxFiles > 0 && len(headers) > mc.MaxFiles {
		utils.RespondWithError(c, http.StatusBadRequest, "Too many files")
		return
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		file, err := mc.readFile(fh)
		if err != nil {
			zap.S().Warnw("failed to read uploaded file", "file", fh.Filename, "error", err)
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to read "+fh.Filename)
			return
		}
		files = append(files, file)
	}

	result := mc.Pipeline.UploadBatch(c.Request.Context(), files, folder, entityID, mc.MaxFiles)
	switch {
	case result.Success:
		c.JSON(http.StatusCreated, result)
	case len(result.URLs) > 0:
		c.JSON(http.StatusMultiStatus, result)
	default:
		c.JSON(http.StatusUnprocessableEntity, result)
	}
}

func (mc *MediaController) Delete(c *gin.Context) {
	var input DeleteUploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result := mc.Pipeline.Delete(c.Request.Context(), input.URL)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
