package ir

import "gopkg.in/yaml.v3"

// dumpNode is the YAML-friendly projection of a Node, used only for
// debugging/CLI output (see cmd/dynlinq). It deliberately drops
// resolved reflect.Method/reflect.Value fields, which yaml.v3 cannot
// marshal meaningfully.
type dumpNode struct {
	Kind     string      `yaml:"kind"`
	Type     string      `yaml:"type,omitempty"`
	Value    interface{} `yaml:"value,omitempty"`
	Op       string      `yaml:"op,omitempty"`
	Callee   string      `yaml:"callee,omitempty"`
	Field    string      `yaml:"field,omitempty"`
	Left     *dumpNode   `yaml:"left,omitempty"`
	Right    *dumpNode   `yaml:"right,omitempty"`
	Operand  *dumpNode   `yaml:"operand,omitempty"`
	Test     *dumpNode   `yaml:"test,omitempty"`
	IfTrue   *dumpNode   `yaml:"ifTrue,omitempty"`
	IfFalse  *dumpNode   `yaml:"ifFalse,omitempty"`
	Receiver *dumpNode   `yaml:"receiver,omitempty"`
	Index    *dumpNode   `yaml:"index,omitempty"`
	Args     []*dumpNode `yaml:"args,omitempty"`
	Body     *dumpNode   `yaml:"body,omitempty"`
}

var kindNames = map[Kind]string{
	KindConstant:    "constant",
	KindParameter:   "parameter",
	KindBinary:      "binary",
	KindUnary:       "unary",
	KindConditional: "conditional",
	KindCall:        "call",
	KindMember:      "member",
	KindIndex:       "index",
	KindConvert:     "convert",
	KindTypeTest:    "typeTest",
	KindTypeAs:      "typeAs",
	KindMemberInit:  "memberInit",
	KindLambda:      "lambda",
}

func project(n *Node) *dumpNode {
	if n == nil {
		return nil
	}
	d := &dumpNode{Kind: kindNames[n.Kind]}
	if n.Type != nil {
		d.Type = n.Type.String()
	}
	d.Value = n.Value
	d.Op = string(n.Op)
	d.Callee = n.Callee
	d.Field = n.FieldName
	d.Left = project(n.Left)
	d.Right = project(n.Right)
	d.Operand = project(n.Operand)
	d.Test = project(n.Test)
	d.IfTrue = project(n.IfTrue)
	d.IfFalse = project(n.IfFalse)
	d.Receiver = project(n.Receiver)
	d.Index = project(n.Index)
	d.Body = project(n.Body)
	for _, a := range n.Args {
		d.Args = append(d.Args, project(a))
	}
	return d
}

// DumpYAML renders node as a human-readable YAML tree for debugging and
// the `dynlinq dump` CLI subcommand.
func DumpYAML(node *Node) (string, error) {
	out, err := yaml.Marshal(project(node))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
