package querybackend

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

const demoTable = "GarmentPerformance"

// summaryColumns are the columns totalled for multi-row answers, in order.
var summaryColumns = []string{
	"ProductionUnits", "DefectiveUnits", "EfficiencyPercent",
	"Salary", "Bonus", "TotalOutputValue",
}

// DetectChartType picks a chart type from keywords in a lower-cased question.
func DetectChartType(question string) string {
	switch {
	case strings.Contains(question, "pie"), strings.Contains(question, "donut"):
		return "pie"
	case strings.Contains(question, "line"):
		return "line"
	case strings.Contains(question, "card"):
		return "card"
	default:
		return "bar"
	}
}

// DetectSQL picks the query answering a lower-cased question.
func DetectSQL(question string, dialect Dialect) string {
	has := func(words ...string) bool {
		for _, w := range words {
			if !strings.Contains(question, w) {
				return false
			}
		}
		return true
	}
	hasAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(question, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("department", "efficiency"):
		return "SELECT Department, AVG(EfficiencyPercent) AS AvgEfficiency FROM GarmentPerformance GROUP BY Department ORDER BY AvgEfficiency DESC"
	case has("employee", "efficiency"):
		return "SELECT EmployeeName, AVG(EfficiencyPercent) AS AvgEfficiency FROM GarmentPerformance GROUP BY EmployeeName ORDER BY AvgEfficiency DESC"
	case has("production", "defect"):
		return "SELECT Department, SUM(ProductionUnits) AS TotalProduction, SUM(DefectiveUnits) AS TotalDefects FROM GarmentPerformance GROUP BY Department"
	case has("total production"):
		return "SELECT SUM(ProductionUnits) AS TotalProduction FROM GarmentPerformance"
	case hasAny("total defective", "total defectiveunits"):
		return "SELECT SUM(DefectiveUnits) AS TotalDefectiveUnits FROM GarmentPerformance"
	case hasAny("total efficiency", "efficiencypercent"):
		return "SELECT AVG(EfficiencyPercent) AS AverageEfficiencyPercent FROM GarmentPerformance"
	case has("total salary"):
		return "SELECT SUM(Salary) AS TotalSalary FROM GarmentPerformance"
	case has("total bonus"):
		return "SELECT SUM(Bonus) AS TotalBonus FROM GarmentPerformance"
	case hasAny("total output", "totaloutputvalue"):
		return "SELECT SUM(TotalOutputValue) AS TotalOutputValue FROM GarmentPerformance"
	default:
		return dialect.SelectTop(100, demoTable)
	}
}

// Summarize computes the totals and one-line summary shown next to an answer.
// A single row reports each numeric column; several rows total the known
// measure columns and average the percentage ones.
func Summarize(records []Record) (Record, string) {
	totals := Record{Columns: []string{}, Values: []any{}}
	switch len(records) {
	case 0:
		return totals, ""
	case 1:
		summary := ""
		row := records[0]
		for i, col := range row.Columns {
			n, ok := asNumber(row.Values[i])
			if !ok {
				continue
			}
			totals.Set(col, n.rounded())
			summary = fmt.Sprintf("Show %s in %s = %s", strings.ReplaceAll(col, "_", " "), demoTable, n.String())
		}
		return totals, summary
	}

	for _, col := range summaryColumns {
		var (
			sum    number
			count  int
			isReal bool
		)
		for _, rec := range records {
			v, ok := rec.Get(col)
			if !ok {
				continue
			}
			n, ok := asNumber(v)
			if !ok {
				continue
			}
			sum.f += n.f
			isReal = isReal || n.real
			count++
		}
		if count == 0 {
			continue
		}
		sum.real = isReal
		if strings.Contains(strings.ToLower(col), "percent") {
			avg := number{f: sum.f / float64(count), real: true}
			totals.Set("Average_"+col, avg.rounded())
		} else {
			totals.Set("Total_"+col, sum.rounded())
		}
	}
	parts := make([]string, 0, totals.Len())
	for i, key := range totals.Columns {
		n, _ := asNumber(totals.Values[i])
		parts = append(parts, fmt.Sprintf("%s = %s", strings.ReplaceAll(key, "_", " "), n.String()))
	}
	return totals, strings.Join(parts, " | ")
}

// number is a numeric cell; real is false for integers.
type number struct {
	f    float64
	real bool
}

func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{f: float64(n)}, true
	case int32:
		return number{f: float64(n)}, true
	case int64:
		return number{f: float64(n)}, true
	case float32:
		return number{f: float64(n), real: true}, true
	case float64:
		return number{f: n, real: true}, true
	default:
		return number{}, false
	}
}

func (n number) rounded() any {
	if !n.real {
		return int64(n.f)
	}
	return math.Round(n.f*100) / 100
}

func (n number) String() string {
	if !n.real {
		return humanize.Comma(int64(n.f))
	}
	return humanize.Commaf(n.f)
}
