// Package stats 提供排班结果的覆盖率与公平性统计分析
package stats

import (
	"sort"
	"strconv"

	"github.com/hospitalroster/core/pkg/model"
)

// CoverageMetrics 覆盖率指标，按需求行(date,shift,skill)聚合，
// 与求解模型中y[date,shift,skill]松弛变量的粒度一一对应。
type CoverageMetrics struct {
	TotalDemand        int                    `json:"total_demand"`        // 需求总人次
	SatisfiedDemand    int                    `json:"satisfied_demand"`    // 已满足人次
	OverallCoverage    float64                `json:"overall_coverage"`    // 整体覆盖率(%)
	DailyCoverage      map[string]DayCoverage `json:"daily_coverage"`      // 每日覆盖情况
	SkillCoverage      map[string]float64     `json:"skill_coverage"`      // 按技能覆盖率(%)
	DemandSatisfaction float64                `json:"demand_satisfaction"` // 需求满足度(%)
	UncoveredDemands   []UncoveredDemand      `json:"uncovered_demands"`   // 存在缺口的需求行
	Understaffed       []UnderstaffedPeriod   `json:"understaffed"`        // 缺口比例超过告警阈值的时段
}

// DayCoverage 单日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	TotalDemand  int     `json:"total_demand"`
	Satisfied    int     `json:"satisfied"`
	CoverageRate float64 `json:"coverage_rate"`
}

// UncoveredDemand 存在缺口的需求行
type UncoveredDemand struct {
	Date     string `json:"date"`
	ShiftID  string `json:"shift_id"`
	Skill    string `json:"skill"`
	Required int    `json:"required"`
	Assigned int    `json:"assigned"`
	Shortage int    `json:"shortage"`
}

// UnderstaffedPeriod 缺口比例超过告警阈值的时段
type UnderstaffedPeriod struct {
	Date     string  `json:"date"`
	ShiftID  string  `json:"shift_id"`
	Skill    string  `json:"skill"`
	Required int     `json:"required"`
	Assigned int     `json:"assigned"`
	Ratio    float64 `json:"ratio"` // assigned/required
}

// CoverageAnalyzer 覆盖率分析器，alertRatio以下的需求行会被标记为人手不足
type CoverageAnalyzer struct {
	alertRatio float64
}

// NewCoverageAnalyzer 创建覆盖率分析器，默认低于50%满足度即告警
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{alertRatio: 0.5}
}

// SetAlertRatio 设置人手不足告警阈值(0-1)
func (c *CoverageAnalyzer) SetAlertRatio(ratio float64) {
	c.alertRatio = ratio
}

// Analyze 按需求快照与已产出的分配计算覆盖率。分配是否满足某条需求，
// 取决于分配到的员工是否具备该需求要求的技能——与求解模型中coverage约束
// 只对具备匹配技能的员工求和的语义保持一致。
func (c *CoverageAnalyzer) Analyze(demands []*model.Demand, assignments []*model.Assignment, snapshot *model.CatalogSnapshot) *CoverageMetrics {
	if len(demands) == 0 {
		return &CoverageMetrics{
			DailyCoverage:      make(map[string]DayCoverage),
			SkillCoverage:      make(map[string]float64),
			OverallCoverage:    100,
			DemandSatisfaction: 100,
		}
	}

	assignedBySlot := make(map[string]int) // key: date|shift|skill
	for _, a := range assignments {
		employee := snapshot.EmployeeByID(a.EmployeeID)
		if employee == nil {
			continue
		}
		for _, skill := range employee.Skills {
			key := a.Date + "|" + a.ShiftID + "|" + skill
			assignedBySlot[key]++
		}
	}

	totalDemand, satisfiedDemand := 0, 0
	dailyStats := make(map[string]*DayCoverage)
	skillTotals := make(map[string]int)
	skillSatisfied := make(map[string]int)
	var uncovered []UncoveredDemand
	var understaffed []UnderstaffedPeriod

	for _, d := range demands {
		key := d.Date + "|" + d.ShiftID + "|" + d.Skill
		assigned := assignedBySlot[key]
		satisfied := assigned
		if satisfied > d.Required {
			satisfied = d.Required
		}

		totalDemand += d.Required
		satisfiedDemand += satisfied

		day, exists := dailyStats[d.Date]
		if !exists {
			day = &DayCoverage{Date: d.Date}
			dailyStats[d.Date] = day
		}
		day.TotalDemand += d.Required
		day.Satisfied += satisfied

		skillTotals[d.Skill] += d.Required
		skillSatisfied[d.Skill] += satisfied

		if assigned < d.Required {
			uncovered = append(uncovered, UncoveredDemand{
				Date:     d.Date,
				ShiftID:  d.ShiftID,
				Skill:    d.Skill,
				Required: d.Required,
				Assigned: assigned,
				Shortage: d.Required - assigned,
			})
			ratio := 0.0
			if d.Required > 0 {
				ratio = float64(assigned) / float64(d.Required)
			}
			if ratio < c.alertRatio {
				understaffed = append(understaffed, UnderstaffedPeriod{
					Date:     d.Date,
					ShiftID:  d.ShiftID,
					Skill:    d.Skill,
					Required: d.Required,
					Assigned: assigned,
					Ratio:    ratio,
				})
			}
		}
	}

	overallCoverage := 100.0
	if totalDemand > 0 {
		overallCoverage = float64(satisfiedDemand) / float64(totalDemand) * 100
	}

	dailyCoverage := make(map[string]DayCoverage, len(dailyStats))
	for date, day := range dailyStats {
		if day.TotalDemand > 0 {
			day.CoverageRate = float64(day.Satisfied) / float64(day.TotalDemand) * 100
		} else {
			day.CoverageRate = 100
		}
		dailyCoverage[date] = *day
	}

	skillCoverage := make(map[string]float64, len(skillTotals))
	for skill, total := range skillTotals {
		if total > 0 {
			skillCoverage[skill] = float64(skillSatisfied[skill]) / float64(total) * 100
		}
	}

	sort.Slice(uncovered, func(i, j int) bool {
		if uncovered[i].Date != uncovered[j].Date {
			return uncovered[i].Date < uncovered[j].Date
		}
		return uncovered[i].ShiftID < uncovered[j].ShiftID
	})

	return &CoverageMetrics{
		TotalDemand:        totalDemand,
		SatisfiedDemand:    satisfiedDemand,
		OverallCoverage:    overallCoverage,
		DailyCoverage:      dailyCoverage,
		SkillCoverage:      skillCoverage,
		DemandSatisfaction: overallCoverage,
		UncoveredDemands:   uncovered,
		Understaffed:       understaffed,
	}
}

// GenerateCoverageReport 生成可读的覆盖率报告
func (c *CoverageAnalyzer) GenerateCoverageReport(m *CoverageMetrics) string {
	report := "=== 覆盖率分析报告 ===\n\n"
	report += "【整体覆盖情况】\n"
	report += "  需求总人次: " + strconv.Itoa(m.TotalDemand) + "\n"
	report += "  已满足人次: " + strconv.Itoa(m.SatisfiedDemand) + "\n\n"

	if len(m.UncoveredDemands) > 0 {
		report += "【存在缺口的需求】\n"
		for _, d := range m.UncoveredDemands {
			report += "  - " + d.Date + " " + d.ShiftID + "/" + d.Skill + " 缺口" + strconv.Itoa(d.Shortage) + "人\n"
		}
		report += "\n"
	}

	if len(m.Understaffed) > 0 {
		report += "【严重人手不足】\n"
		for _, p := range m.Understaffed {
			report += "  - " + p.Date + " " + p.ShiftID + "/" + p.Skill + " 需要" + strconv.Itoa(p.Required) + "人，仅有" + strconv.Itoa(p.Assigned) + "人\n"
		}
	}

	return report
}
