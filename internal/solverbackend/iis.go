package solverbackend

import (
	"fmt"
	"strings"

	"github.com/hospitalroster/core/internal/milp"
)

// ConflictType 对IIS中出现的约束标签按约束族做出的粗分类，便于向调用方
// 解释"为什么无解"而不必暴露原始约束标签命名规则。
type ConflictType string

const (
	ConflictCoverage    ConflictType = "COVERAGE_SHORTAGE"
	ConflictRest        ConflictType = "REST_VIOLATION"
	ConflictHours       ConflictType = "HOURS_VIOLATION"
	ConflictRatio       ConflictType = "SKILL_RATIO_VIOLATION"
	ConflictConsecutive ConflictType = "CONSECUTIVE_DAYS_VIOLATION"
	ConflictWeekend     ConflictType = "WEEKEND_LINKAGE_VIOLATION"
	ConflictNightCap    ConflictType = "NIGHT_CAP_VIOLATION"
	ConflictMinShifts   ConflictType = "MIN_SHIFTS_VIOLATION"
	ConflictUnknown     ConflictType = "UNKNOWN"
)

var groupToConflictType = map[string]ConflictType{
	"coverage":            ConflictCoverage,
	"forbidden_pair":      ConflictRest,
	"max_weekly_hours":    ConflictHours,
	"min_weekly_hours":    ConflictHours,
	"skill_ratio":         ConflictRatio,
	"consecutive_days":    ConflictConsecutive,
	"complete_weekend":    ConflictWeekend,
	"night_cap":           ConflictNightCap,
	"min_shifts":          ConflictMinShifts,
}

// Conflict 是IIS中一条约束的分类结果，供无可行解诊断展示给调用方
type Conflict struct {
	Tag         string       `json:"tag"`
	Group       string       `json:"group"`
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
}

// ClassifyConflicts 将求解后端返回的IIS约束标签集合归类为可读的冲突列表
func ClassifyConflicts(m *milp.Model, tags []string) []Conflict {
	conflicts := make([]Conflict, 0, len(tags))
	for _, tag := range tags {
		c := m.ConstraintByTag(tag)
		group := "unknown"
		if c != nil {
			group = c.Group
		} else {
			group = groupFromTag(tag)
		}
		ctype, ok := groupToConflictType[group]
		if !ok {
			ctype = ConflictUnknown
		}
		conflicts = append(conflicts, Conflict{
			Tag:         tag,
			Group:       group,
			Type:        ctype,
			Description: describe(ctype, tag),
		})
	}
	return conflicts
}

// groupFromTag 在模型未能找到约束对象时，退化为按标签前缀猜测约束族
// （标签格式统一为 "<group_prefix>:...")
func groupFromTag(tag string) string {
	idx := strings.Index(tag, ":")
	if idx < 0 {
		return "unknown"
	}
	prefix := tag[:idx]
	switch prefix {
	case "coverage":
		return "coverage"
	case "rest":
		return "forbidden_pair"
	case "max_weekly_hours", "min_weekly_hours":
		return prefix
	case "skill_ratio":
		return "skill_ratio"
	case "consecutive_days":
		return "consecutive_days"
	case "complete_weekend":
		return "complete_weekend"
	case "night_cap":
		return "night_cap"
	case "min_shifts":
		return "min_shifts"
	default:
		return "unknown"
	}
}

func describe(t ConflictType, tag string) string {
	switch t {
	case ConflictCoverage:
		return fmt.Sprintf("覆盖需求无法满足: %s", tag)
	case ConflictRest:
		return fmt.Sprintf("班次间休息时间约束冲突: %s", tag)
	case ConflictHours:
		return fmt.Sprintf("周工时约束冲突: %s", tag)
	case ConflictRatio:
		return fmt.Sprintf("资深/初级配比约束冲突: %s", tag)
	case ConflictConsecutive:
		return fmt.Sprintf("最大连续工作天数约束冲突: %s", tag)
	case ConflictWeekend:
		return fmt.Sprintf("完整周末联动约束冲突: %s", tag)
	case ConflictNightCap:
		return fmt.Sprintf("最大夜班次数约束冲突: %s", tag)
	case ConflictMinShifts:
		return fmt.Sprintf("最少班次数约束冲突: %s", tag)
	default:
		return fmt.Sprintf("约束冲突: %s", tag)
	}
}
