package handler

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "decisions-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MsgInvalidJSON is returned when a request body cannot be decoded
const MsgInvalidJSON = "Invalid JSON body."

// maxBodyBytes caps request bodies; the largest valid create body is far smaller
const maxBodyBytes = 64 << 10

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes the {ok:false, message} envelope for err. Errors that
// are not AppErrors are reported with the generic message only.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := apperrors.As(err)
	if appErr.Type == apperrors.ErrorTypeInternal {
		logger.Error("Request failed", zap.Error(appErr))
	}
	respondJSON(w, appErr.StatusCode, apperrors.ErrorResponse{
		OK:      false,
		Message: appErr.Message,
	})
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}

// votedCookiePrefix names the advisory per-decision vote cookie
const votedCookiePrefix = "voted_"

// votedCookieName keys the cookie by the canonical id so the vote and detail
// paths agree on it whatever casing the client used
func votedCookieName(decisionID string) string {
	id := strings.TrimSpace(decisionID)
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	}
	return votedCookiePrefix + id
}
