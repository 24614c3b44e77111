package solverbackend

import (
	"fmt"

	"github.com/hospitalroster/core/internal/milp"
)

const verifyTolerance = 1e-6

// Violation 描述求解后端返回的解在重新代入本地模型后仍然违反的约束
type Violation struct {
	Tag   string     `json:"tag"`
	Group string     `json:"group"`
	LHS   float64    `json:"lhs"`
	Sense milp.Sense `json:"sense"`
	RHS   float64    `json:"rhs"`
}

// Verify 用变量取值重新代入模型的每条约束，返回仍然违反的约束列表。
// 这是提交前信任外部求解结果之前的最后一道防线：既防御后端实现的bug，
// 也防御序列化/精度误差导致的"看似可行实则违反约束"的解。
//
// values必须是经milp.RoundBinaries取整后的同一份取值，与后续
// 分配提取用的是同一份取整结果——分别取整会让两处判断在0.5边界上
// 得出不同结论，产生校验通过但实际落库分配却违反约束的解。
func Verify(m *milp.Model, values map[string]float64) []Violation {
	var violations []Violation
	for _, c := range m.Constraints {
		lhs := 0.0
		for _, term := range c.Terms {
			lhs += term.Coef * values[term.Var]
		}
		if !satisfies(lhs, c.Sense, c.RHS) {
			violations = append(violations, Violation{
				Tag:   c.Tag,
				Group: c.Group,
				LHS:   lhs,
				Sense: c.Sense,
				RHS:   c.RHS,
			})
		}
	}
	return violations
}

func satisfies(lhs float64, sense milp.Sense, rhs float64) bool {
	switch sense {
	case milp.LE:
		return lhs <= rhs+verifyTolerance
	case milp.GE:
		return lhs >= rhs-verifyTolerance
	case milp.EQ:
		diff := lhs - rhs
		if diff < 0 {
			diff = -diff
		}
		return diff <= verifyTolerance
	default:
		return true
	}
}

// Summarize 将违规列表格式化为一段可写入任务日志的摘要文本
func Summarize(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	msg := fmt.Sprintf("求解后端返回的解违反了%d条约束，已拒绝该解:\n", len(violations))
	for _, v := range violations {
		msg += fmt.Sprintf("  - [%s] %s: lhs=%.4f %s rhs=%.4f\n", v.Group, v.Tag, v.LHS, v.Sense, v.RHS)
	}
	return msg
}
