package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/NethermindEth/staking-sidecar/pkg/creditsOperations"
	"github.com/NethermindEth/staking-sidecar/pkg/stakingState"
	"github.com/NethermindEth/staking-sidecar/pkg/types/numbers"
	"github.com/gocarina/gocsv"
)

type Format string

const (
	Format_JSON Format = "json"
	Format_CSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Format_JSON, Format_CSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported report format '%s'", s)
}

// SettlementRow is one settlement with the operation that produced it. Amounts are
// strings so u64 values survive JSON consumers.
type SettlementRow struct {
	BlockHeight  uint32 `json:"blockHeight" csv:"block_height"`
	TransitionId string `json:"transitionId" csv:"transition_id"`
	Function     string `json:"function" csv:"function"`
	Staker       string `json:"staker" csv:"staker"`
	Beneficiary  string `json:"beneficiary" csv:"beneficiary"`
	Microcredits string `json:"microcredits" csv:"microcredits"`
	Credits      string `json:"credits" csv:"credits"`
}

type Report struct {
	BlockHeight       uint32           `json:"blockHeight"`
	StateRoot         string           `json:"stateRoot"`
	OperationCount    int              `json:"operationCount"`
	TotalMicrocredits string           `json:"totalMicrocredits"`
	Settlements       []*SettlementRow `json:"settlements"`
}

// NewReport lists the settlements of result in table order. A transition written
// more than once is attributed to its last operation.
func NewReport(height uint32, ops []creditsOperations.Operation, result *stakingState.Result, root stakingState.StateRoot) *Report {
	byTransition := make(map[string]creditsOperations.Operation, len(ops))
	for _, op := range ops {
		byTransition[op.Transition()] = op
	}

	rows := make([]*SettlementRow, 0, result.Settlements.Len())
	amounts := make([]uint64, 0, result.Settlements.Len())
	result.Settlements.Each(func(id string, s stakingState.Settlement) bool {
		row := &SettlementRow{
			BlockHeight:  height,
			TransitionId: id,
			Beneficiary:  s.Beneficiary.String(),
			Microcredits: strconv.FormatUint(s.Microcredits, 10),
			Credits:      numbers.MicrocreditsToCredits(s.Microcredits),
		}
		if op, ok := byTransition[id]; ok {
			row.Function = op.Function()
			row.Staker = op.StakerAddress().String()
		}
		rows = append(rows, row)
		amounts = append(amounts, s.Microcredits)
		return true
	})

	return &Report{
		BlockHeight:       height,
		StateRoot:         string(root),
		OperationCount:    len(ops),
		TotalMicrocredits: numbers.SumMicrocredits(amounts...),
		Settlements:       rows,
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one line per settlement under a header row.
func (r *Report) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(r.Settlements, w)
}

func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case Format_JSON:
		return r.WriteJSON(w)
	case Format_CSV:
		return r.WriteCSV(w)
	}
	return fmt.Errorf("unsupported report format '%s'", format)
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(in io.Reader) ([]*SettlementRow, error) {
	rows := make([]*SettlementRow, 0)
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
