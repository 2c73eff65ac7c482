package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPrescriptionSize = 10 << 20

// AddOrUpdatePrescription handles the multipart POST
// /admin-add-updated-prescriptions with fields _id, sessionNumber,
// prescriptionType and file.
func (h *HandlerBundle) AddOrUpdatePrescription(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("prescription file is required"))
		return
	}
	if fh.Size > maxPrescriptionSize {
		utils.RespondError(c, utils.NewValidationError("prescription file exceeds 10MB"))
		return
	}

	tmp, err := os.CreateTemp("", "prescription-*"+filepath.Ext(fh.Filename))
	if err != nil {
		utils.RespondError(c, utils.NewServerError("Failed to store upload", err))
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			getLogger(c).Warn("Failed to remove temp upload", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	if err := c.SaveUploadedFile(fh, tmpPath); err != nil {
		utils.RespondError(c, utils.NewServerError("Failed to store upload", err))
		return
	}

	bookingID := c.PostForm("_id")
	if bookingID == "" {
		bookingID = c.PostForm("bookingId")
	}
	sessionNumber, err := strconv.Atoi(c.PostForm("sessionNumber"))
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("sessionNumber must be a number"))
		return
	}

	p, err := h.Bookings.AddOrUpdatePrescription(c.Request.Context(), models.PrescriptionUpload{
		BookingID:        bookingID,
		SessionNumber:    sessionNumber,
		PrescriptionType: c.PostForm("prescriptionType"),
		LocalFilePath:    tmpPath,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Prescription saved successfully", p)
}
