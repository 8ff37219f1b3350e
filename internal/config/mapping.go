package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// FieldSpec declares how one context key is derived from one record column.
type FieldSpec struct {
	// Key is the placeholder name used in the template.
	Key string

	// Column is the source column in the input table.
	Column string

	// Default is used when the column is absent, missing or cleans to "".
	// Its kind (text or number) is preserved in the context.
	Default types.Value

	// Attention renders the field as a styled marker when it resolves to
	// the attention sentinel.
	Attention bool
}

// Mapping is an ordered, read-only set of field specs for one document type.
type Mapping struct {
	document types.DocumentType
	fields   []FieldSpec
}

// NewMapping copies fields into a new mapping.
func NewMapping(document types.DocumentType, fields ...FieldSpec) Mapping {
	out := make([]FieldSpec, len(fields))
	copy(out, fields)
	return Mapping{document: document, fields: out}
}

// Document returns the document type the mapping feeds.
func (m Mapping) Document() types.DocumentType {
	return m.document
}

// Fields returns a copy of the field specs in declaration order.
func (m Mapping) Fields() []FieldSpec {
	out := make([]FieldSpec, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of field specs.
func (m Mapping) Len() int {
	return len(m.fields)
}

func text(key, column, def string) FieldSpec {
	return FieldSpec{Key: key, Column: column, Default: types.Text(def)}
}

func number(key, column string, def float64) FieldSpec {
	return FieldSpec{Key: key, Column: column, Default: types.Number(def)}
}

func flagged(key, column, sentinel string) FieldSpec {
	return FieldSpec{Key: key, Column: column, Default: types.Text(sentinel), Attention: true}
}

// DefaultOfferMapping returns the built-in offer letter mapping.
func DefaultOfferMapping() Mapping {
	return NewMapping(types.DocumentOffer,
		text("candidate_name", "姓名", "未知候选人"),
		text("occupation_name", "任职职位", "未知职位"),
		text("department_name", "所属部门", "未知部门"),
		text("address_name", "办公地址", "未知地址"),
		number("basic_salary", "基本工资", 0),
		number("bonus_salary", "岗位工资", 0),
		number("performance_salary", "绩效工资", 0),
		number("month_1", "月", 0),
		number("day_1", "日", 0),
		text("week_1", "星期", "未知"),
		number("probation_1", "试用期比例", 0),
		text("contact_1", "HR", "未知"),
		number("mobile_1", "HR联系电话", 0),
		number("offer_month", "offer月", 0),
		number("offer_day", "offer日", 0),
	)
}

// DefaultApprovalMapping returns the built-in approval form mapping.
// Required fields default to sentinel and are attention-flagged.
func DefaultApprovalMapping(sentinel string) Mapping {
	return NewMapping(types.DocumentApproval,
		text("candidate_name", "姓名", "未知候选人"),
		text("occupation_name", "任职职位", "未知职位"),
		text("department_name", "所属部门", "未知部门"),
		text("first_interview", "初始面评", ""),
		text("interviewer_1", "初始面试官", ""),
		text("second_interview", "复试面评", ""),
		text("interviewer_2", "复试面试官", ""),
		text("third_interview", "终试面评", ""),
		text("interviewer_3", "终面面试官", ""),
		flagged("leader_1", "汇报对象", sentinel),
		flagged("second_department", "所属二级部门", sentinel),
		flagged("total_salary", "基本底薪", sentinel),
		flagged("basic_salary1", "基本薪资", sentinel),
		flagged("bonus_salary1", "岗位补助", sentinel),
		flagged("performance_salary1", "绩效工资", sentinel),
		flagged("level_1", "建议职级", sentinel),
		flagged("department_leader", "部门负责人", sentinel),
		flagged("contact_2", "招聘负责人", sentinel),
		flagged("candidate_num", "候选人联系电话", sentinel),
		flagged("candidate_id", "身份证号", sentinel),
		flagged("channel_cate", "招聘渠道", sentinel),
		flagged("channel_detail", "渠道备注", sentinel),
		text("pre_salary", "过往薪资描述", ""),
		text("expected_salary", "期望薪资", ""),
		flagged("probation_months", "试用期", sentinel),
		flagged("probation_1", "试用期比例", sentinel),
		flagged("company_signed", "签约主体", sentinel),
		flagged("city_base", "base地", sentinel),
	)
}

// =============================================================================
// MAPPING FILE
// =============================================================================

// mappingFile is the YAML layout of a mapping override file:
//
//	offer:
//	  - key: basic_salary
//	    column: 基本工资
//	    default: 0
//	approval:
//	  - key: leader_1
//	    column: 汇报对象
//	    default: 请填写
//	    attention: true
type mappingFile struct {
	Offer    []fieldEntry `yaml:"offer"`
	Approval []fieldEntry `yaml:"approval"`
}

type fieldEntry struct {
	Key       string    `yaml:"key"`
	Column    string    `yaml:"column"`
	Default   yaml.Node `yaml:"default"`
	Attention bool      `yaml:"attention"`
}

// Mappings holds the mapping of each document type.
type Mappings struct {
	Offer    Mapping
	Approval Mapping
}

// DefaultMappings returns the built-in mappings.
func DefaultMappings(sentinel string) Mappings {
	return Mappings{
		Offer:    DefaultOfferMapping(),
		Approval: DefaultApprovalMapping(sentinel),
	}
}

// LoadMappings reads a mapping override file. A section that is absent or
// empty keeps the built-in mapping of that document type.
func LoadMappings(path, sentinel string) (Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mappings{}, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return ParseMappings(data, sentinel)
}

// ParseMappings parses mapping override YAML.
func ParseMappings(data []byte, sentinel string) (Mappings, error) {
	var file mappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Mappings{}, fmt.Errorf("failed to parse mapping file: %w", err)
	}

	out := DefaultMappings(sentinel)
	if len(file.Offer) > 0 {
		m, err := toMapping(types.DocumentOffer, file.Offer)
		if err != nil {
			return Mappings{}, fmt.Errorf("offer mapping: %w", err)
		}
		out.Offer = m
	}
	if len(file.Approval) > 0 {
		m, err := toMapping(types.DocumentApproval, file.Approval)
		if err != nil {
			return Mappings{}, fmt.Errorf("approval mapping: %w", err)
		}
		out.Approval = m
	}
	return out, nil
}

func toMapping(document types.DocumentType, entries []fieldEntry) (Mapping, error) {
	specs := make([]FieldSpec, 0, len(entries))
	for i, e := range entries {
		def, err := defaultValue(e.Default)
		if err != nil {
			return Mapping{}, fmt.Errorf("entry %d (%s): %w", i+1, e.Key, err)
		}
		specs = append(specs, FieldSpec{
			Key:       e.Key,
			Column:    e.Column,
			Default:   def,
			Attention: e.Attention,
		})
	}
	return NewMapping(document, specs...), nil
}

// defaultValue maps a YAML scalar to a typed default: numeric tags become
// numbers, everything else text. An absent or null default is "".
func defaultValue(node yaml.Node) (types.Value, error) {
	if node.Kind == 0 {
		return types.Text(""), nil
	}
	if node.Kind != yaml.ScalarNode {
		return types.Value{}, fmt.Errorf("default must be a scalar")
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		var n float64
		if err := node.Decode(&n); err != nil {
			return types.Value{}, fmt.Errorf("invalid numeric default %q: %w", node.Value, err)
		}
		return types.Number(n), nil
	case "!!null":
		return types.Text(""), nil
	default:
		return types.Text(node.Value), nil
	}
}
