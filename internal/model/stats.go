// internal/model/stats.go
package model

// Reserved record kinds written by the recorder
const (
	KindProgramParameters = "programparameters"
	KindSystemConfig      = "systemconfig"
	KindAcqDuration       = "acqduration"
	KindSystemStats       = "systemstats"
	KindProcessStats      = "processstats"
	KindThreadStats       = "threadstats"
)

// SystemConfig holds the host constants needed by tick and page based metrics
type SystemConfig struct {
	ClockTicks int64 // clock ticks per second (CLK_TCK)
	PageSize   int64 // bytes
}

// SystemConfigFrom reads a systemconfig record
func SystemConfigFrom(r Record) (SystemConfig, error) {
	clk, err := r.Int("clktck")
	if err != nil {
		return SystemConfig{}, err
	}
	page, err := r.Int("pagesize")
	if err != nil {
		return SystemConfig{}, err
	}
	return SystemConfig{ClockTicks: clk, PageSize: page}, nil
}

// AcqDuration is one acquisition cycle of the recorder, in nanoseconds
type AcqDuration struct {
	Start int64
	End   int64
}

// AcqDurationFrom reads an acqduration record
func AcqDurationFrom(r Record) (AcqDuration, error) {
	start, err := r.Int("start")
	if err != nil {
		return AcqDuration{}, err
	}
	end, err := r.Int("end")
	if err != nil {
		return AcqDuration{}, err
	}
	return AcqDuration{Start: start, End: end}, nil
}

// ProgramParameters echoes the recorder's command line
type ProgramParameters struct {
	Params string
}

// ProgramParametersFrom reads a programparameters record
func ProgramParametersFrom(r Record) (ProgramParameters, error) {
	p, err := r.Text("params")
	if err != nil {
		return ProgramParameters{}, err
	}
	return ProgramParameters{Params: p}, nil
}
