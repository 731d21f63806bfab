package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"hour",
	"start",
	"end",
	"zone",
	"price",
	"action",
	"requested_power_mw",
	"power_mw",
	"energy_from_grid_mwh",
	"energy_to_grid_mwh",
	"throughput_mwh",
	"soc_start",
	"soc_end",
	"pnl",
	"cum_pnl",
}

// WriteLedgerCSVFile writes the ledger to path, replacing any existing file.
func WriteLedgerCSVFile(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedgerCSV(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func WriteLedgerCSV(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Hour),
			fmtTime(r.Start),
			fmtTime(r.End),
			r.Zone,
			fmtFloat(r.Price),
			string(r.Action),
			fmtFloat(r.RequestedPowerMW),
			fmtFloat(r.PowerMW),
			fmtFloat(r.EnergyFromGridMWh),
			fmtFloat(r.EnergyToGridMWh),
			fmtFloat(r.ThroughputMWh),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
			fmtFloat(r.PNL),
			fmtFloat(r.CumPNL),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
