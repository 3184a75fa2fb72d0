package loader

import (
	"strings"
	"testing"

	"github.com/dannybpoulsen/utap/internal/check"
	"github.com/dannybpoulsen/utap/internal/diagnostic"
)

const document = `<?xml version="1.0" encoding="utf-8"?>
<nta version="1.1">
  <declaration>
    const int N = 3;
    int done;
    clock c;
    chan a;
  </declaration>
  <template>
    <name>Worker</name>
    <parameter>const int id</parameter>
    <declaration>int local;</declaration>
    <location id="id0">
      <name>idle</name>
      <label kind="invariant">c &lt;= 10</label>
    </location>
    <location id="id1">
      <name>busy</name>
    </location>
    <init ref="id0"/>
    <transition>
      <source ref="id0"/>
      <target ref="id1"/>
      <label kind="guard">local &lt; N</label>
      <label kind="synchronisation">a?</label>
      <label kind="assignment">local = local + 1</label>
    </transition>
  </template>
  <instantiation>W = Worker(1);</instantiation>
  <system>system W;</system>
  <queries>
    <query><formula>E&lt;&gt; done == 0</formula></query>
  </queries>
</nta>`

func TestParseXMLBuffer(t *testing.T) {
	handler := diagnostic.NewHandler()
	sys, ok := ParseXMLBuffer([]byte(document), "model.xml", handler)
	if !ok {
		t.Fatalf("load failed:\n%s", handler.Report())
	}
	if len(sys.Templates) != 1 || sys.Templates[0].Sym.Name() != "Worker" {
		t.Fatal("template missing")
	}
	tmpl := sys.Templates[0]
	if len(tmpl.States) != 2 || tmpl.States[0].Invariant.Empty() {
		t.Error("locations or invariant missing")
	}
	if len(tmpl.Edges) != 1 || tmpl.Edges[0].Sync.Empty() {
		t.Error("transition labels missing")
	}
	if len(sys.Instances) != 1 {
		t.Error("instantiation missing")
	}
	if len(sys.Properties) != 1 {
		t.Error("query missing")
	}

	if !check.AnalyzeSystem(sys, handler) {
		t.Fatalf("analysis failed:\n%s", handler.Report())
	}
}

func TestVersionGate(t *testing.T) {
	t.Run("unsupported version", func(t *testing.T) {
		doc := strings.Replace(document, `version="1.1"`, `version="3.0"`, 1)
		handler := diagnostic.NewHandler()
		if _, ok := ParseXMLBuffer([]byte(doc), "model.xml", handler); ok {
			t.Fatal("expected a version error")
		}
		found := false
		for _, d := range handler.Diagnostics() {
			if strings.Contains(d.Message, "unsupported document version") {
				found = true
			}
		}
		if !found {
			t.Errorf("missing version diagnostic:\n%s", handler.Report())
		}
	})

	t.Run("missing version defaults", func(t *testing.T) {
		doc := strings.Replace(document, ` version="1.1"`, ``, 1)
		handler := diagnostic.NewHandler()
		if _, ok := ParseXMLBuffer([]byte(doc), "model.xml", handler); !ok {
			t.Fatalf("default version must be accepted:\n%s", handler.Report())
		}
	})

	t.Run("garbage version", func(t *testing.T) {
		doc := strings.Replace(document, `version="1.1"`, `version="latest"`, 1)
		handler := diagnostic.NewHandler()
		if _, ok := ParseXMLBuffer([]byte(doc), "model.xml", handler); ok {
			t.Fatal("expected an error for a malformed version")
		}
	})
}

func TestInvalidXML(t *testing.T) {
	handler := diagnostic.NewHandler()
	if _, ok := ParseXMLBuffer([]byte("<nta><unclosed>"), "model.xml", handler); ok {
		t.Fatal("expected an error")
	}
}
