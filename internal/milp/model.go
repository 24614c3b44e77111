// Package milp 构建排班问题的混合整数线性规划表示，交由外部求解后端求解。
// 本包只产出模型数据（变量/约束/目标），不包含任何求解算法。
package milp

// VarKind 变量类型
type VarKind string

const (
	Binary     VarKind = "binary"
	Continuous VarKind = "continuous"
)

// Variable 一个决策变量
type Variable struct {
	Name        string  `json:"name"`
	Kind        VarKind `json:"kind"`
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
	ObjCoef     float64 `json:"obj_coef"` // 目标函数中的系数
}

// Sense 约束方向
type Sense string

const (
	LE Sense = "<="
	GE Sense = ">="
	EQ Sense = "="
)

// Term 线性项：某个变量乘以一个系数
type Term struct {
	Var  string  `json:"var"`
	Coef float64 `json:"coef"`
}

// Constraint 一条线性约束，带有稳定的Tag供IIS诊断回指
type Constraint struct {
	Tag   string  `json:"tag"`   // 稳定标签，如 "coverage:2024-01-01:AM:RN"
	Group string  `json:"group"` // 约束族名，如 "coverage"、"forbidden_pair"
	Terms []Term  `json:"terms"`
	Sense Sense   `json:"sense"`
	RHS   float64 `json:"rhs"`
}

// ObjectiveSense 优化方向
type ObjectiveSense string

const (
	Minimize ObjectiveSense = "minimize"
)

// Model 一次求解请求的完整MILP表示
type Model struct {
	Sense       ObjectiveSense `json:"sense"`
	Variables   []Variable     `json:"variables"`
	Constraints []Constraint   `json:"constraints"`
	TimeLimit   int            `json:"time_limit_seconds"`
	Warnings    []string       `json:"warnings,omitempty"` // 建模阶段发现的非致命问题，如约束下调
}

// ConstraintByTag 返回给定Tag对应的约束，找不到返回nil。用于IIS结果回填。
func (m *Model) ConstraintByTag(tag string) *Constraint {
	for i := range m.Constraints {
		if m.Constraints[i].Tag == tag {
			return &m.Constraints[i]
		}
	}
	return nil
}

// binaryRoundThreshold 是二元变量取整的判定阈值
const binaryRoundThreshold = 0.5

// RoundBinaries 对求解后端返回的取值做一次二元变量取整，返回取整后的副本。
// 连续变量（y/z松弛）原样保留。调用方必须对同一份取整结果做约束校验和分配
// 提取，而不是分别对原始浮点值各自取整——否则两处独立的阈值判断可能对同一
// 变量给出不同的取整结果（例如0.5恰好落在边界上），导致校验通过的解和实际
// 落库的分配互相矛盾。
func RoundBinaries(m *Model, values map[string]float64) map[string]float64 {
	rounded := make(map[string]float64, len(values))
	for k, v := range values {
		rounded[k] = v
	}
	for _, v := range m.Variables {
		if v.Kind != Binary {
			continue
		}
		if rounded[v.Name] >= binaryRoundThreshold {
			rounded[v.Name] = 1
		} else {
			rounded[v.Name] = 0
		}
	}
	return rounded
}
