package api

import (
	"time"

	"github.com/google/uuid"
)

type (
	// ModuleKind discriminates the specialized payload attached to a Module
	ModuleKind int

	// ActionKind is the closed set of step actions a process may perform
	ActionKind int

	// CompareOp is a comparison operator
	CompareOp int

	// CalculateOp is a calculation operator
	CalculateOp int

	// FieldType is the declared runtime type of a field module
	FieldType int

	// DataUsage classifies how a screen element is used on the terminal
	DataUsage int

	// DataKind classifies where a screen element's value comes from
	DataKind int

	// Module is the common envelope shared by every definition type. Each
	// specialized module is keyed 1:1 by the same id as its Module.
	Module struct {
		ID            uuid.UUID  `json:"id" db:"id"`
		ApplicationID uuid.UUID  `json:"applicationId" db:"application_id"`
		Kind          ModuleKind `json:"kind" db:"module_kind"`
		Version       int        `json:"version" db:"version"`
		Name          string     `json:"name" db:"name"`
		Description   string     `json:"description" db:"description"`
		CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
		ModifiedAt    time.Time  `json:"modifiedAt" db:"modified_at"`
	}

	// ProcessModule is an executable sequence of steps forming one workflow
	ProcessModule struct {
		ID          uuid.UUID      `json:"id" db:"module_id"`
		Subtype     string         `json:"subtype" db:"subtype"`
		Remote      bool           `json:"remote" db:"remote"`
		DynamicCall bool           `json:"dynamicCall" db:"dynamic_call"`
		Comment     string         `json:"comment" db:"comment"`
		Steps       []*ProcessStep `json:"steps"`
	}

	// ProcessStep is one instruction in a process. Sequence numbers and
	// label names are unique within the owning process.
	ProcessStep struct {
		ID        uuid.UUID  `json:"id" db:"id"`
		ProcessID uuid.UUID  `json:"processId" db:"process_id"`
		Sequence  int        `json:"sequence" db:"sequence"`
		Label     string     `json:"label" db:"label_name"`
		Action    ActionKind `json:"action" db:"action_kind"`
		ActionID  uuid.UUID  `json:"actionId" db:"action_id"`
		PassLabel string     `json:"passLabel" db:"pass_label"`
		FailLabel string     `json:"failLabel" db:"fail_label"`
		Commented bool       `json:"commented" db:"commented"`
		Comment   string     `json:"comment" db:"comment"`
	}

	// Operand is a constant-or-field input to a compare or calculate action
	Operand struct {
		Constant bool      `json:"constant"`
		FieldID  uuid.UUID `json:"fieldId"`
		Value    string    `json:"value"`
	}

	// CompareAction compares two operands and produces a Pass/Fail outcome
	CompareAction struct {
		ID       uuid.UUID `json:"id"`
		Operator CompareOp `json:"operator"`
		Input1   Operand   `json:"input1"`
		Input2   Operand   `json:"input2"`
	}

	// CalculateAction is an ordered list of calculation details sharing the
	// session field store
	CalculateAction struct {
		ID      uuid.UUID          `json:"id"`
		Details []*CalculateDetail `json:"details"`
	}

	// CalculateDetail is one calculation writing into a result field
	CalculateDetail struct {
		ID          uuid.UUID   `json:"id"`
		Sequence    int         `json:"sequence"`
		Operator    CalculateOp `json:"operator"`
		Input1      Operand     `json:"input1"`
		Input2      Operand     `json:"input2"`
		ResultField uuid.UUID   `json:"resultField"`
	}

	// DatabaseAction holds an opaque SQL statement template. The text may
	// carry a leading CONNECT directive, field placeholders, and a RETURNS
	// clause naming the fields a result row populates.
	DatabaseAction struct {
		ID        uuid.UUID `json:"id"`
		Statement string    `json:"statement"`
	}

	// DialogAction presents a terminal screen and waits for input
	DialogAction struct {
		ID      uuid.UUID       `json:"id"`
		Details []*DialogDetail `json:"details"`
	}

	// DialogDetail binds a dialog to a screen format for one screen group
	DialogDetail struct {
		ID             uuid.UUID `json:"id"`
		ScreenGroup    int       `json:"screenGroup"`
		ScreenFormatID uuid.UUID `json:"screenFormatId"`
		Reference      int       `json:"reference"`
		KeyEntry       bool      `json:"keyEntry"`
	}

	// ScreenFormat is a layout definition for a terminal screen class
	ScreenFormat struct {
		ID          uuid.UUID             `json:"id"`
		ScreenGroup int                   `json:"screenGroup"`
		SoftKeyID   uuid.UUID             `json:"softKeyId"`
		Details     []*ScreenFormatDetail `json:"details"`
	}

	// ScreenFormatDetail is one positioned element of a screen format
	ScreenFormatDetail struct {
		ID       uuid.UUID `json:"id"`
		Sequence int       `json:"sequence"`
		Usage    DataUsage `json:"usage"`
		Kind     DataKind  `json:"kind"`
		DataID   uuid.UUID `json:"dataId"`
		Format   string    `json:"format"`
		Row      int       `json:"row"`
		Column   int       `json:"column"`
		Width    int       `json:"width"`
		Height   int       `json:"height"`
		Echo     int       `json:"echo"`
		Overflow int       `json:"overflow"`
	}

	// FieldModule declares a typed named variable addressable by id at
	// runtime and by the owning module's name for parameter binding
	FieldModule struct {
		ID      uuid.UUID `json:"id"`
		Type    FieldType `json:"type"`
		Default string    `json:"default"`
	}

	// Device is a registered terminal with its bootstrap process
	Device struct {
		ID            string    `json:"deviceId" db:"device_id"`
		Name          string    `json:"deviceName" db:"device_name"`
		Type          string    `json:"deviceType" db:"device_type"`
		RootProcessID uuid.UUID `json:"rootProcessId" db:"root_process_id"`
		Active        bool      `json:"active" db:"is_active"`
	}
)

const (
	ModuleApplication ModuleKind = iota
	ModuleProcess
	ModuleCalculate
	ModuleCompare
	ModuleDatabase
	ModuleField
	ModuleScreenFormat
	ModuleDialog
	ModuleSoftKey
)

const (
	ActionCall ActionKind = iota + 1
	ActionReturnPass
	ActionReturnFail
	ActionDatabaseExecute
	ActionDialog
	ActionCalculate
	ActionCompare
)

const (
	CompareEquals CompareOp = iota + 1
	CompareNotEquals
	CompareGreaterThan
	CompareLessThan
	CompareGreaterOrEqual
	CompareLessOrEqual
	CompareContains
	CompareStartsWith
	CompareEndsWith
)

const (
	CalcAssign CalculateOp = iota + 1
	CalcConcatenate
	CalcAdd
	CalcSubtract
	CalcMultiply
	CalcDivide
	CalcModulus
	CalcClear
)

const (
	FieldString FieldType = iota + 1
	FieldInteger
	FieldBoolean
	FieldDateTime
)

const (
	UsageInput  DataUsage = 1
	UsageOutput DataUsage = 2
	UsageRead   DataUsage = 3
	UsageLabel  DataUsage = 4
)

// DataKind values are a fixed wire convention shared with the terminal
// definition tooling
const (
	KindLiteral DataKind = 0
	KindInput   DataKind = -1
	KindField   DataKind = 17
)

var actionNames = map[ActionKind]string{
	ActionCall:            "Call",
	ActionReturnPass:      "ReturnPass",
	ActionReturnFail:      "ReturnFail",
	ActionDatabaseExecute: "DatabaseExecute",
	ActionDialog:          "Dialog",
	ActionCalculate:       "Calculate",
	ActionCompare:         "Compare",
}

func (a ActionKind) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}
