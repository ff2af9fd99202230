package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/break-even/internal/config"
	"github.com/iwvelando/break-even/internal/widget"
	"github.com/iwvelando/break-even/pkg/breakeven"
	"github.com/iwvelando/break-even/pkg/constants"
	"github.com/iwvelando/break-even/pkg/output"
	"github.com/iwvelando/break-even/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	session       *widget.Session
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the break-even API for
// the given session.
func NewHandler(logger *zap.Logger, session *widget.Session, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, session: session, maxUploadSize: maxUploadSize, version: trimmedVersion}

	r := chi.NewRouter()

	// Session-backed views
	r.Get("/api/options", h.handleOptions)
	r.Get("/api/evaluate", h.handleEvaluate)
	r.Get("/api/scenarios", h.handleScenarios)
	r.Get("/api/insight", h.handleInsight)
	r.Get("/api/curve", h.handleCurve)
	r.Get("/api/snapshot", h.handleSnapshot)
	r.Get("/api/volume", h.handleGetVolume)
	r.Post("/api/volume", h.handleSetVolume)

	// Ad-hoc configurations (file upload or editor JSON)
	r.Post("/api/snapshot", h.handleSnapshotUpload)
	r.Post("/api/editor/snapshot", h.handleSnapshotEditor)
	r.Post("/api/editor/export", h.handleConfigExport)
	r.Get("/api/config", h.handleConfig)

	// Version endpoint for UI metadata
	r.Get("/api/version", h.handleVersion)

	return r
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, logger *zap.Logger, cfg *Config, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "server.Run"),
			zap.String("address", cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	logger.Info("shutting down",
		zap.String("op", "server.Run"),
		zap.Duration("timeout", cfg.ShutdownTimeout()),
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

type optionView struct {
	breakeven.CostOption
	ContributionMargin float64                   `json:"contributionMargin"`
	BreakEven          breakeven.BreakEvenVolume `json:"breakEven"`
}

type snapshotResponse struct {
	Snapshot widget.Snapshot `json:"snapshot"`
	CSV      string          `json:"csv"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

func (h *handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	conf, err := h.session.Configuration()
	if err != nil {
		h.respondSessionError(w, err, "server.handleOptions")
		return
	}
	model := conf.Model()
	views := make([]optionView, 0, len(conf.Options))
	for _, o := range conf.Options {
		be, _ := model.BreakEven(o)
		views = append(views, optionView{
			CostOption:         o,
			ContributionMargin: model.ContributionMargin(o),
			BreakEven:          be,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"unitPrice": conf.UnitPrice,
		"options":   views,
	})
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	volume, ok := h.requestVolume(w, r, "server.handleEvaluate")
	if !ok {
		return
	}
	results, err := h.session.Evaluate(volume)
	if err != nil {
		h.respondSessionError(w, err, "server.handleEvaluate")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"volume":  volume,
		"results": results,
	})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	table, err := h.session.Scenarios()
	if err != nil {
		h.respondSessionError(w, err, "server.handleScenarios")
		return
	}
	h.writeJSON(w, http.StatusOK, table)
}

func (h *handler) handleInsight(w http.ResponseWriter, r *http.Request) {
	volume, ok := h.requestVolume(w, r, "server.handleInsight")
	if !ok {
		return
	}
	insight, err := h.session.Insight(volume)
	if err != nil {
		h.respondSessionError(w, err, "server.handleInsight")
		return
	}
	h.writeJSON(w, http.StatusOK, insight)
}

func (h *handler) handleCurve(w http.ResponseWriter, r *http.Request) {
	curve, err := h.session.Curve()
	if err != nil {
		h.respondSessionError(w, err, "server.handleCurve")
		return
	}
	h.writeJSON(w, http.StatusOK, curve)
}

func (h *handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	volume, ok := h.requestVolume(w, r, "server.handleSnapshot")
	if !ok {
		return
	}
	h.respondSnapshot(w, h.session, volume, nil, start, "server.handleSnapshot")
}

func (h *handler) handleGetVolume(w http.ResponseWriter, r *http.Request) {
	volume, err := h.session.Volume()
	if err != nil {
		h.respondSessionError(w, err, "server.handleGetVolume")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"volume": volume})
}

func (h *handler) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload struct {
		Volume *int `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode volume: %v", err), "server.handleSetVolume")
		return
	}
	if payload.Volume == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing volume", "server.handleSetVolume")
		return
	}
	if err := h.session.SetVolume(*payload.Volume); err != nil {
		h.respondSessionError(w, err, "server.handleSetVolume")
		return
	}

	h.logger.Info("volume updated",
		zap.String("op", "server.handleSetVolume"),
		zap.Int("volume", *payload.Volume),
	)
	h.writeJSON(w, http.StatusOK, map[string]int{"volume": *payload.Volume})
}

func (h *handler) handleSnapshotUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleSnapshotUpload")
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "server.handleSnapshotUpload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", "server.handleSnapshotUpload")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleSnapshotUpload"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), "server.handleSnapshotUpload")
		return
	}

	h.runSnapshot(w, r, buf.Bytes(), start, "server.handleSnapshotUpload")
}

func (h *handler) handleSnapshotEditor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleSnapshotEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", "server.handleSnapshotEditor")
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleSnapshotEditor")
		return
	}

	h.runSnapshot(w, r, configBytes, start, "server.handleSnapshotEditor")
}

func (h *handler) runSnapshot(w http.ResponseWriter, r *http.Request, configBytes []byte, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	cfg.Normalize()
	warnings := cfg.ValidateConfiguration()
	session, err := widget.NewSession(h.logger, cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	defer func() {
		_ = session.Close()
	}()

	volume := cfg.Volume.Default
	if raw := r.URL.Query().Get("volume"); raw != "" {
		volume, err = validation.ParseVolume(raw, session.MaxVolume())
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}

	h.respondSnapshot(w, session, volume, warnings, start, op)
}

func (h *handler) respondSnapshot(w http.ResponseWriter, session *widget.Session, volume int, warnings []string, start time.Time, op string) {
	snap, err := session.SnapshotAt(volume)
	if err != nil {
		h.respondSessionError(w, err, op)
		return
	}

	csvData, err := output.CSVString(snap, output.SectionResults|output.SectionScenarios)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("snapshot computed",
		zap.String("op", op),
		zap.Int("volume", volume),
		zap.String("best", snap.Insight.Best.Option.Name),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, snapshotResponse{
		Snapshot: snap,
		CSV:      csvData,
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	conf, err := h.session.Configuration()
	if err != nil {
		h.respondSessionError(w, err, "server.handleConfig")
		return
	}
	yamlBytes, err := yaml.Marshal(&conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfig")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// exportKeyOrder lists the top-level keys that lead an exported config.
var exportKeyOrder = []string{"unitPrice", "options", "scenarios"}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range exportKeyOrder {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

// requestVolume reads the optional volume query parameter, defaulting to the
// session's current volume.
func (h *handler) requestVolume(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	raw := r.URL.Query().Get("volume")
	if raw == "" {
		volume, err := h.session.Volume()
		if err != nil {
			h.respondSessionError(w, err, op)
			return 0, false
		}
		return volume, true
	}

	volume, err := validation.ParseVolume(raw, h.session.MaxVolume())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return 0, false
	}
	return volume, true
}

func (h *handler) respondSessionError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, validation.ErrInvalidVolume):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, widget.ErrSessionClosed):
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
