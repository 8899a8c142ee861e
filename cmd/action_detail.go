package cmd

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool"
)

// ActionCmd shows detailed information about one workflow action method.
type ActionCmd struct {
	Name string `short:"n" long:"name" description:"service/method, or the service_x-method form list-actions prints" required:"yes"`
	JSON bool   `long:"json" description:"print result as JSON"`
}

// splitActionName accepts cedar/schema/generate as well as cedar_schema-generate.
func splitActionName(name string) (string, string, error) {
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		if name[:idx] == "" || name[idx+1:] == "" {
			return "", "", fmt.Errorf("name must be service/method")
		}
		return name[:idx], name[idx+1:], nil
	}
	n := tool.Name(name)
	if n.Method() == "" {
		return "", "", fmt.Errorf("name must be service/method")
	}
	return n.Service(), n.Method(), nil
}

func (c *ActionCmd) Execute(_ []string) error {
	svcName, method, err := splitActionName(c.Name)
	if err != nil {
		return err
	}

	ctx := context.Background()
	wf, err := workflowSingleton(ctx)
	if err != nil {
		return err
	}
	defer wf.Runtime().Shutdown(ctx)

	service := wf.Actions().Lookup(svcName)
	if service == nil {
		return fmt.Errorf("service %q not found", svcName)
	}
	sig := service.Methods().Lookup(method)
	if sig == nil {
		return fmt.Errorf("method %q not found in service %q", method, svcName)
	}
	info := newActionInfo(svcName, sig, true)
	if c.JSON {
		return printJSON(info)
	}
	fmt.Fprintf(stdout, "%s/%s (%s)\n", info.Service, info.Method, info.Tool)
	if info.Description != "" {
		fmt.Fprintf(stdout, "  %s\n", info.Description)
	}
	for _, part := range []struct{ label, name, def string }{
		{"input", info.InputType, info.InputDef},
		{"output", info.OutputType, info.OutputDef},
	} {
		fmt.Fprintf(stdout, "\n%s: %s\n", part.label, part.name)
		if part.def != "" {
			fmt.Fprintln(stdout, part.def)
		}
	}
	return nil
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	if t.Kind() == reflect.Pointer {
		return "*" + t.Elem().String()
	}
	return t.String()
}

// typeDefinition lists the fields of a struct type with their JSON names,
// one per line. Other kinds have no definition.
func typeDefinition(t reflect.Type, indent string) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		return typeDefinition(t.Elem(), indent)
	}
	if t.Kind() != reflect.Struct {
		return ""
	}
	var b strings.Builder
	b.WriteString("struct {\n")
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		b.WriteString(indent)
		b.WriteString("    ")
		b.WriteString(f.Name)
		b.WriteString(" ")
		b.WriteString(simpleTypeExpr(f.Type))
		if name := strings.Split(f.Tag.Get("json"), ",")[0]; name != "" && name != "-" {
			b.WriteString("\t// ")
			b.WriteString(name)
		}
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

func simpleTypeExpr(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + simpleTypeExpr(t.Elem())
	}
	if t.Name() != "" {
		return t.String()
	}
	switch t.Kind() {
	case reflect.Slice:
		return "[]" + simpleTypeExpr(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), simpleTypeExpr(t.Elem()))
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", simpleTypeExpr(t.Key()), simpleTypeExpr(t.Elem()))
	case reflect.Struct:
		return "struct{...}"
	default:
		return t.String()
	}
}
