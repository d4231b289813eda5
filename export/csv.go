package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/cohort/cluster"
	"github.com/hupe1980/cohort/model"
	"github.com/hupe1980/cohort/similarity"
)

// DefaultPrecision is the number of decimals of exported similarity scores.
const DefaultPrecision = 4

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteProfile writes one row per cluster: Cluster, Size and the mean of
// every feature of schema.
func WriteProfile(w io.Writer, schema model.Schema, profile []cluster.ClusterProfile) error {
	records := make([][]string, 0, len(profile)+1)
	records = append(records, append([]string{"Cluster", "Size"}, schema...))

	for _, p := range profile {
		if len(p.Means) != len(schema) {
			return fmt.Errorf("cluster %d: %w", p.Cluster, model.ErrDimensionMismatch)
		}
		row := make([]string, 0, len(schema)+2)
		row = append(row, strconv.Itoa(p.Cluster), strconv.Itoa(p.Size))
		for _, m := range p.Means {
			row = append(row, formatFloat(m))
		}
		records = append(records, row)
	}
	return writeAll(w, records)
}

// WriteAssignments writes CustomerID,Cluster in the order of ids, which is
// the row order of m.
func WriteAssignments(w io.Writer, ids []model.CustomerID, m *cluster.Model) error {
	if len(ids) != len(m.Assignments) {
		return model.ErrDimensionMismatch
	}

	records := make([][]string, 0, len(ids)+1)
	records = append(records, []string{"CustomerID", "Cluster"})
	for i, id := range ids {
		records = append(records, []string{string(id), strconv.Itoa(m.Assignments[i])})
	}
	return writeAll(w, records)
}

// WriteElbow writes the elbow series.
func WriteElbow(w io.Writer, elbow []cluster.ElbowPoint) error {
	records := make([][]string, 0, len(elbow)+1)
	records = append(records, []string{"K", "Inertia", "Iterations", "Converged"})
	for _, p := range elbow {
		records = append(records, []string{
			strconv.Itoa(p.K),
			formatFloat(p.Inertia),
			strconv.Itoa(p.Iterations),
			strconv.FormatBool(p.Converged),
		})
	}
	return writeAll(w, records)
}

// WriteLookalikes writes CustomerID,Neighbor1,Score1,...,NeighborN,ScoreN.
// N is the longest neighbor list; shorter lists leave trailing cells empty.
// Scores are printed with precision decimals.
func WriteLookalikes(w io.Writer, lookalikes []similarity.Lookalike, precision int) error {
	if precision < 0 {
		precision = DefaultPrecision
	}

	n := 0
	for _, l := range lookalikes {
		n = max(n, len(l.Neighbors))
	}

	header := make([]string, 0, 2*n+1)
	header = append(header, "CustomerID")
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("Neighbor%d", i), fmt.Sprintf("Score%d", i))
	}

	records := make([][]string, 0, len(lookalikes)+1)
	records = append(records, header)
	for _, l := range lookalikes {
		row := make([]string, 2*n+1)
		row[0] = string(l.CustomerID)
		for i, nb := range l.Neighbors {
			row[2*i+1] = string(nb.ID)
			row[2*i+2] = strconv.FormatFloat(nb.Score, 'f', precision, 64)
		}
		records = append(records, row)
	}
	return writeAll(w, records)
}

// WriteWarnings writes Kind,Subject,Detail in the order the warnings were
// raised.
func WriteWarnings(w io.Writer, warnings model.Warnings) error {
	items := warnings.Items()
	records := make([][]string, 0, len(items)+1)
	records = append(records, []string{"Kind", "Subject", "Detail"})
	for _, it := range items {
		records = append(records, []string{it.Kind.String(), it.Subject, it.Detail})
	}
	return writeAll(w, records)
}
