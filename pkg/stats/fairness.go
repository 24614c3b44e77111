// Package stats 提供排班结果的覆盖率与公平性统计分析
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/hospitalroster/core/pkg/model"
)

// FairnessMetrics 公平性指标，衡量求解结果在员工之间分配工时/夜班/周末班的均衡程度
type FairnessMetrics struct {
	WorkloadGini        float64 `json:"workload_gini"`          // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance    float64 `json:"workload_variance"`      // 工时方差
	WorkloadStdDev      float64 `json:"workload_std_dev"`       // 工时标准差
	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"` // 人均工时
	MaxHours            float64 `json:"max_hours"`
	MinHours            float64 `json:"min_hours"`
	HoursRange          float64 `json:"hours_range"`

	ShiftTypeDistribution map[string]float64 `json:"shift_type_distribution"` // day/night班次分布(%)
	NightShiftGini        float64            `json:"night_shift_gini"`        // 夜班分配基尼系数
	WeekendShiftGini      float64            `json:"weekend_shift_gini"`      // 周末班分配基尼系数

	EmployeeStats []EmployeeStat `json:"employee_stats"`

	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分(0-100)
}

// EmployeeStat 单个员工在一次排班结果中的工作量统计
type EmployeeStat struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	TotalHours    float64 `json:"total_hours"`
	ShiftCount    int     `json:"shift_count"`
	NightShifts   int     `json:"night_shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	OvertimeHours float64 `json:"overtime_hours"`
	Deviation     float64 `json:"deviation"` // 与人均工时的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 基于富化后的排班分配与目录快照计算公平性指标
func (f *FairnessAnalyzer) Analyze(assignments []*model.Assignment, snapshot *model.CatalogSnapshot) *FairnessMetrics {
	if len(assignments) == 0 {
		return &FairnessMetrics{
			ShiftTypeDistribution: make(map[string]float64),
			OverallFairnessScore:  100,
		}
	}

	employeeStats := f.calculateEmployeeStats(assignments, snapshot)

	hours := make([]float64, len(employeeStats))
	nightShifts := make([]float64, len(employeeStats))
	weekendShifts := make([]float64, len(employeeStats))
	for i, stat := range employeeStats {
		hours[i] = stat.TotalHours
		nightShifts[i] = float64(stat.NightShifts)
		weekendShifts[i] = float64(stat.WeekendShifts)
	}
	// 快照中本次没有任何分配的员工按0计入工时/夜班/周末班分布
	assigned := make(map[string]bool, len(employeeStats))
	for _, stat := range employeeStats {
		assigned[stat.EmployeeID] = true
	}
	for id := range snapshot.Employees {
		if !assigned[id] {
			hours = append(hours, 0)
			nightShifts = append(nightShifts, 0)
			weekendShifts = append(weekendShifts, 0)
		}
	}

	avgHours := f.calculateMean(hours)
	variance := f.calculateVariance(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := f.calculateRange(hours)

	for i := range employeeStats {
		if avgHours > 0 {
			employeeStats[i].Deviation = (employeeStats[i].TotalHours - avgHours) / avgHours * 100
		}
	}

	workloadGini := f.calculateGini(hours)
	nightGini := f.calculateGini(nightShifts)
	weekendGini := f.calculateGini(weekendShifts)

	shiftTypeDist := f.calculateShiftTypeDistribution(assignments, snapshot)

	overallScore := f.calculateOverallScore(workloadGini, nightGini, weekendGini, stdDev, avgHours)

	return &FairnessMetrics{
		WorkloadGini:          workloadGini,
		WorkloadVariance:      variance,
		WorkloadStdDev:        stdDev,
		AvgHoursPerEmployee:   avgHours,
		MaxHours:              maxHours,
		MinHours:              minHours,
		HoursRange:            maxHours - minHours,
		ShiftTypeDistribution: shiftTypeDist,
		NightShiftGini:        nightGini,
		WeekendShiftGini:      weekendGini,
		EmployeeStats:         employeeStats,
		OverallFairnessScore:  overallScore,
	}
}

// calculateEmployeeStats 按员工聚合工时/夜班/周末班/加班数据
func (f *FairnessAnalyzer) calculateEmployeeStats(assignments []*model.Assignment, snapshot *model.CatalogSnapshot) []EmployeeStat {
	statMap := make(map[string]*EmployeeStat)

	for _, a := range assignments {
		stat, exists := statMap[a.EmployeeID]
		if !exists {
			name := a.EmployeeID
			if e := snapshot.EmployeeByID(a.EmployeeID); e != nil {
				name = e.Name
			}
			stat = &EmployeeStat{EmployeeID: a.EmployeeID, EmployeeName: name}
			statMap[a.EmployeeID] = stat
		}

		stat.TotalHours += a.Hours
		stat.ShiftCount++
		if a.IsOvertime {
			stat.OvertimeHours += a.Hours
		}

		shift := snapshot.ShiftByID(a.ShiftID)
		if shift != nil && shift.IsNight() {
			stat.NightShifts++
		}
		if f.isWeekend(a.Date) {
			stat.WeekendShifts++
		}
	}

	result := make([]EmployeeStat, 0, len(statMap))
	for _, stat := range statMap {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalHours > result[j].TotalHours
	})
	return result
}

// isWeekend 判断日期字符串(YYYY-MM-DD)是否落在周末
func (f *FairnessAnalyzer) isWeekend(dateStr string) bool {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return false
	}
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

func (f *FairnessAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func (f *FairnessAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func (f *FairnessAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func (f *FairnessAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateShiftTypeDistribution 按目录中登记的班次类型(day/night)统计分布占比
func (f *FairnessAnalyzer) calculateShiftTypeDistribution(assignments []*model.Assignment, snapshot *model.CatalogSnapshot) map[string]float64 {
	typeCounts := make(map[string]int)
	total := len(assignments)

	for _, a := range assignments {
		shiftType := "day"
		if shift := snapshot.ShiftByID(a.ShiftID); shift != nil && shift.IsNight() {
			shiftType = "night"
		}
		typeCounts[shiftType]++
	}

	distribution := make(map[string]float64)
	if total > 0 {
		for shiftType, count := range typeCounts {
			distribution[shiftType] = float64(count) / float64(total) * 100
		}
	}
	return distribution
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(workloadGini, nightGini, weekendGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.4
		nightWeight    = 0.25
		weekendWeight  = 0.25
		stdDevWeight   = 0.1
	)

	workloadScore := (1 - workloadGini) * 100
	nightScore := (1 - nightGini) * 100
	weekendScore := (1 - weekendGini) * 100

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore +
		nightWeight*nightScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}

// CompareRuns 比较两次排班求解结果的公平性差异
func (f *FairnessAnalyzer) CompareRuns(run1, run2 []*model.Assignment, snapshot *model.CatalogSnapshot) map[string]float64 {
	metrics1 := f.Analyze(run1, snapshot)
	metrics2 := f.Analyze(run2, snapshot)

	return map[string]float64{
		"workload_gini_diff": metrics2.WorkloadGini - metrics1.WorkloadGini,
		"night_gini_diff":    metrics2.NightShiftGini - metrics1.NightShiftGini,
		"weekend_gini_diff":  metrics2.WeekendShiftGini - metrics1.WeekendShiftGini,
		"overall_score_diff": metrics2.OverallFairnessScore - metrics1.OverallFairnessScore,
		"run1_overall_score": metrics1.OverallFairnessScore,
		"run2_overall_score": metrics2.OverallFairnessScore,
	}
}
