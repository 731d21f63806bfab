package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"gridalpha/internal/api/models"
	"gridalpha/internal/config"
	"gridalpha/internal/logger"
)

// BatteryHandler lists the battery presets in a YAML directory.
type BatteryHandler struct {
	batteryDir string
	log        *logger.Logger
}

// NewBatteryHandler resolves dir to an absolute path; empty means
// ./examples/batteries under the working directory.
func NewBatteryHandler(dir string, log *logger.Logger) *BatteryHandler {
	if dir == "" {
		dir = filepath.Join(".", "examples", "batteries")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("batteries")
	log.Infow("using battery directory", "dir", dir)
	return &BatteryHandler{batteryDir: dir, log: log}
}

func (h *BatteryHandler) Dir() string {
	return h.batteryDir
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	batteries := []models.BatteryInfo{}

	entries, err := os.ReadDir(h.batteryDir)
	if err != nil {
		h.log.Warnw("cannot read battery directory", "dir", h.batteryDir, "error", err)
		c.JSON(http.StatusOK, gin.H{"batteries": batteries})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(h.batteryDir, entry.Name())
		info, err := loadBatteryInfo(path, entry.Name())
		if err != nil {
			h.log.Warnw("skipping battery file", "file", path, "error", err)
			continue
		}
		batteries = append(batteries, *info)
	}
	sort.Slice(batteries, func(i, j int) bool { return batteries[i].ID < batteries[j].ID })

	h.log.Debugw("listed batteries", "count", len(batteries))
	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}

func loadBatteryInfo(path, filename string) (*models.BatteryInfo, error) {
	b, err := config.LoadBatteryFile(path)
	if err != nil {
		return nil, err
	}
	if err := b.ToModel().Validate(); err != nil {
		return nil, err
	}

	// "1_standard_4h.yaml" -> "1_standard_4h"
	id := strings.TrimSuffix(filename, ".yaml")
	name := b.Name
	if name == "" {
		name = id
	}

	return &models.BatteryInfo{
		ID:          id,
		Name:        name,
		Description: b.Description,
		File:        filename,
		Specs: models.BatterySpecs{
			BatterySize: b.BatterySize,
			Duration:    b.Duration,
			EnergyMWh:   b.ToModel().EnergyMWh(),
			Efficiency:  b.Efficiency,
			CyclingCost: b.ToModel().CyclingCost,
		},
	}, nil
}
