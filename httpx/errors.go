package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/tailor-intake/log"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeError(w, r, http.StatusInternalServerError, ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeError(w, r, http.StatusNotFound, ErrorResponse{Error: http.StatusText(http.StatusNotFound)})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	writeError(w, r, status, ErrorResponse{Error: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeError(w, r, status, ErrorResponse{Error: errMsg})
}

// Will log the rejected fields at debug level, and send an HTTP response
// with status 400 listing a message per field
func LogInvalidFields(w http.ResponseWriter, r *http.Request, code string, fields map[string]string) {
	log.Debugf("%s: %v", code, fields)
	writeError(w, r, http.StatusBadRequest, ErrorResponse{Error: "invalid fields", Fields: fields})
}
