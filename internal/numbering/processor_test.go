package numbering

import (
	"testing"

	"github.com/dgallion1/docnum/internal/parser"
	"github.com/dgallion1/docnum/internal/render"
	"github.com/stretchr/testify/assert"
)

func number(t *testing.T, src string, opts Options) (string, Stats) {
	t.Helper()
	p := New(opts, nil)
	root := parser.ParseMarkdown([]byte(src))
	stats := p.Process(root)
	return render.Markdown(root), stats
}

func TestProcess_Counters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "reset defines a counter",
			in:   "# test\ns1\n:num{#fig reset}\ns2\n## test1\n![fig1](/images/fig1.png)\n*fig :num[fig]{up}*\n",
			want: "# test\n\ns1\n\ns2\n\n## test1\n\n![fig1](/images/fig1.png)\n*fig 1*\n",
		},
		{
			name: "multiple resets",
			in:   "# test\n:num{#foo reset}\n:num{#bar reset}\n:num[foo]{up}\n:num[bar]{up}\n:num[bar]{up}\n:num[bar]{up}\n:num[foo]{up}\n",
			want: "# test\n\n\n\n1\n1\n2\n3\n2\n",
		},
		{
			name: "reset container",
			in: "# test\n\n:::num{reset counter}\n## :num{#foo}\n## :num{#bar}\n### :num{#bar}\n:::\n\n" +
				"## head2-1\n\n:num[foo]{up}:num[bar]{up}\n\n### head3-1\n\n:num[foo]{up}:num[bar]{up}\n\n" +
				"## head2-2\n\n:num[foo]{up}:num[bar]{up}\n",
			want: "# test\n\n## head2-1\n\n11\n\n### head3-1\n\n21\n\n## head2-2\n\n11\n",
		},
		{
			name: "increment container",
			in: "# test\n\n:::num{reset counter}\n:num{#chapter}\n:::\n:::num{increment counter}\n## :num{#chapter}\n:::\n\n" +
				"## test 1\n\n:num[chapter]\n\n### test1-1\n\n:num[chapter]\n\n## test2\n\n:num[chapter]\n",
			want: "# test\n\n## test 1\n\n1\n\n### test1-1\n\n1\n\n## test2\n\n2\n",
		},
		{
			name: "unrelated containers are kept and never trigger",
			in: "# test\n\n:::num{reset counter}\n:num{#chapter}\n:::\n:::num{increment counter}\n## :num{#chapter}\n:::\n" +
				":::tmp{reset}\n## :tmp\n:::\n## test 1\n\n:num[chapter]\n\n### test1-1\n\n:num[chapter]\n\n## test2\n\n:num[chapter]\n",
			want: "# test\n\n:::tmp{reset}\n## :tmp\n:::\n\n## test 1\n\n1\n\n### test1-1\n\n1\n\n## test2\n\n2\n",
		},
		{
			name: "reset value",
			in: "# test\n\n:::num{reset counter}\n:num{#chapter}\n:::\n:::num{increment counter}\n## :num{#chapter}\n:::\n" +
				":num{#chapter reset=10}\n\n## test 1\n\n:num[chapter]\n\n### test1-1\n\n:num[chapter]\n\n## test2\n\n:num[chapter]\n",
			want: "# test\n\n\n\n## test 1\n\n11\n\n### test1-1\n\n11\n\n## test2\n\n12\n",
		},
		{
			name: "up",
			in:   "# test\n\n:num{#fig reset}\n\n:num[fig]{up}\n\n:num[fig]{up}\n",
			want: "# test\n\n\n\n1\n\n2\n",
		},
		{
			name: "look flag and plain lookup",
			in:   "# test\n\n:num{#foo reset}\n\n:num[foo]{up}\n\n:num[foo]{look}:num[foo]\n\n:num[foo]{up}\n",
			want: "# test\n\n\n\n1\n\n11\n\n2\n",
		},
		{
			name: "look attribute",
			in:   "# test\n\n:num{#foo reset}\n\n:num{look=foo}\n",
			want: "# test\n\n\n\n0\n",
		},
		{
			name: "counter prefix",
			in:   "# test\n\n:num{#foo reset}\n\n:num[%foo]{up}\n",
			want: "# test\n\n\n\n1\n",
		},
		{
			name: "undefined look attribute",
			in:   "# test\n\n:num{#foo reset}\n\n:num{look=bar}\n",
			want: "# test\n\n\n\n(ReferenceError: \"bar\" is not defined)\n",
		},
		{
			name: "increment of undefined counter",
			in:   "# test\n\n:::num{increment counter}\n## :num{#chapter}\n:::\n## test1\n",
			want: "# test\n\n(ReferenceError: \"chapter\" is not defined)\n\n## test1\n",
		},
		{
			name: "undefined references keep surrounding text",
			in:   "# test\n\n:num{#foo reset}\n\ns1:num[bar]{up}s2\n\ns3:num[car]{look}s4\n\ns5:num[baz]s6\n\n:num[foo]{up}\n",
			want: "# test\n\n\n\ns1(ReferenceError: \"bar\" is not defined)s2\n\n" +
				"s3(ReferenceError: \"car\" is not defined)s4\n\ns5(ReferenceError: \"baz\" is not defined)s6\n\n1\n",
		},
		{
			name: "escaped name in error",
			in:   "# test\n\ns1:num[[bar]]s2\n",
			want: "# test\n\ns1(ReferenceError: \"\\[bar]\" is not defined)s2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := number(t, tt.in, Options{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcess_Assign(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "define",
			in:   "# test\n\ns1\n\n![fig1](/images/fig1.png)\n*fig :num{#fig}*\n\ns2\n\n## test1\n\nfig :num[fig]\n",
			want: "# test\n\ns1\n\n![fig1](/images/fig1.png)\n*fig 1*\n\ns2\n\n## test1\n\nfig 1\n",
		},
		{
			name: "series",
			in:   "# test\n\n:num{#test1-foo}:num{#test2-foo}:num{#test1-bar}\n\n## test1\n\n:num[test1-foo]:num[test2-foo]:num[test1-bar]\n",
			want: "# test\n\n112\n\n## test1\n\n112\n",
		},
		{
			name: "series advance independently",
			in: "# test\n\n:num{#foo} :num{#bar} :num{#fig-foo} :num{#fig-bar} :num{#car} :num{#tbl-foo} :num{#tbl-bar}\n\n" +
				":num[foo] :num[bar] :num[car] :num[fig-foo] :num[fig-bar] :num[tbl-foo] :num[tbl-bar]\n",
			want: "# test\n\n1 2 1 2 3 1 2\n\n1 2 3 1 2 1 2\n",
		},
		{
			name: "define increments",
			in:   "# test\n\n:num{#foo}\n\n:num{#bar}\n\n:num{#car}\n",
			want: "# test\n\n1\n\n2\n\n3\n",
		},
		{
			name: "assign prefix",
			in:   "# test\n\n:num{#foo}\n\n:num{#bar}\n\n:num[$bar]\n",
			want: "# test\n\n1\n\n2\n\n2\n",
		},
		{
			name: "forward reference",
			in:   "# test\n\n:num{#foo}\n\n:num[car]\n\n:num{#bar}\n\n:num{#car}\n",
			want: "# test\n\n1\n\n3\n\n2\n\n3\n",
		},
		{
			name: "undefined",
			in:   "# test\n\n:num{#foo}\n\ns1:num[bar]s2\n\n:num[foo]\n",
			want: "# test\n\n1\n\ns1(ReferenceError: \"bar\" is not defined)s2\n\n1\n",
		},
		{
			name: "reset container",
			in: "# test\n\n:::num{reset assign}\n## :num\n:::\n\n## head2-1\n\n:num{#foo}\n\n:num{#bar}\n\n" +
				"## head2-2\n\n:num{#car}\n\n## head2-3\n\n:num[foo]:num[bar]:num[car]\n",
			want: "# test\n\n## head2-1\n\n1\n\n2\n\n## head2-2\n\n1\n\n## head2-3\n\n121\n",
		},
		{
			name: "nested heading does not reset",
			in: "# test\n\n:::num{reset assign}\n## :num\n:::\n\n## head2-1\n\n:num{#foo}\n\n" +
				":::cnt{reset}\n## :cnt{#chapter}\n:::\n\n:num{#bar}\n\n:num[foo]:num[bar]",
			want: "# test\n\n## head2-1\n\n1\n\n:::cnt{reset}\n## :cnt{#chapter}\n:::\n\n2\n\n12\n",
		},
		{
			name: "reset container with series",
			in: "# test\n\n:::num{reset assign}\n## :num\n:::\n\n## head2-1\n\n:num{#test1-foo}\n\n:num{#test1-bar}\n\n" +
				"## head2-2\n\n:num{#test1-car}\n\n## head2-3\n\n:num[test1-foo]:num[test1-bar]:num[test1-car]\n",
			want: "# test\n\n## head2-1\n\n1\n\n2\n\n## head2-2\n\n1\n\n## head2-3\n\n121\n",
		},
		{
			name: "counter and assign reset independently",
			in: "# test\n:::num{reset counter}\n:num{#foo}\n:::\n:::num{reset assign}\n## :num\n:::\n" +
				":num{#bar}:num{#car}\n## test2-1\n\n:num[foo]{up}\n:num{#baz}\n",
			want: "# test\n\n12\n\n## test2-1\n\n1\n1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := number(t, tt.in, Options{})
			assert.Equal(t, tt.want, got)
		})
	}
}

const formatDoc = "# test\n\n:::num{format assign}\n:num[global-test-1 :num --]{series=t1}\n:::\n\n" +
	":::num{format assign name=simple}\n:num[simple-test-1 :num --]{series=t1}\n:::\n\n" +
	":::num{format assign name=section}\n:num[section test-1 :num[sec]-:num --]{series=t1}\n:::\n\n" +
	"## test 1\n\n:num{#t1-foo}\n:num{#t1-bar}\n\n:num[t1-foo]\n:num[t1-bar]\n"

func TestProcess_Formats(t *testing.T) {
	t.Run("format with counters", func(t *testing.T) {
		in := "# test\n\n:::num{reset counter}\n# :num{#cnt}\n:::\n:::num{increment counter}\n## :num{#cnt}\n:::\n\n" +
			"## test 1\n\n:::num{format assign}\n:num[test-1 :num[cnt]-:num --]{series=t1}\n:num[test-2 :num[cnt]-:num --]{series=t2}\n:::\n\n" +
			":num{#t1-foo}\n:num{#t1-bar}\n:num{#t2-foo}\n:num{#t2-bar}\n\n" +
			"## test 2\n\n:num{#t1-car}\n:num{#t1-baz}\n:num{#t2-car}\n:num{#t2-baz}\n\n" +
			":num[t1-foo]\n:num[t1-bar]\n:num[t1-car]\n:num[t1-baz]\n\n" +
			":num[t2-foo]:num[t2-bar]\n:num[t2-car]:num[t2-baz]\n"
		want := "# test\n\n## test 1\n\n" +
			"test-1 1-1 --\ntest-1 1-2 --\ntest-2 1-1 --\ntest-2 1-2 --\n\n## test 2\n\n" +
			"test-1 2-1 --\ntest-1 2-2 --\ntest-2 2-1 --\ntest-2 2-2 --\n\n" +
			"test-1 1-1 --\ntest-1 1-2 --\ntest-1 2-1 --\ntest-1 2-2 --\n\n" +
			"test-2 1-1 --test-2 1-2 --\ntest-2 2-1 --test-2 2-2 --\n"
		got, _ := number(t, in, Options{})
		assert.Equal(t, want, got)
	})

	t.Run("undefined required counter", func(t *testing.T) {
		in := "# test\n\n:::num{format assign}\n:num[test-1 :num[cnt]-:num --]{series=t1}\n:::\n\n" +
			"## test 1\n\n:num{#t1-foo}\n:num{#t1-bar}\n\n:num[t1-foo]\n:num[t1-bar]\n"
		got, _ := number(t, in, Options{})
		assert.Equal(t, "# test\n\n## test 1\n\n1\n2\n\n1\n2\n", got)
	})

	t.Run("fallback format", func(t *testing.T) {
		in := "# test\n\n:::num{format assign}\n:num[test-1 :num --]{series=t1}\n:num[test-1 :num[cnt]-:num --]{series=t1}\n:::\n\n" +
			"## test 1\n\n:num{#t1-foo}\n:num{#t1-bar}\n\n:num[t1-foo]\n:num[t1-bar]\n"
		got, _ := number(t, in, Options{})
		assert.Equal(t, "# test\n\n## test 1\n\ntest-1 1 --\ntest-1 2 --\n\ntest-1 1 --\ntest-1 2 --\n", got)
	})

	t.Run("group selected by front matter", func(t *testing.T) {
		in := "---\ntitle: tesst\ntype: idea\nnumGroupName: simple\n---\n" + formatDoc
		got, stats := number(t, in, Options{})
		assert.Equal(t, "---\ntitle: tesst\ntype: idea\n---\n\n# test\n\n## test 1\n\n"+
			"simple-test-1 1 --\nsimple-test-1 2 --\n\nsimple-test-1 1 --\nsimple-test-1 2 --\n", got)
		assert.Equal(t, "simple", stats.Group)
	})

	t.Run("group field option", func(t *testing.T) {
		in := "---\ntitle: tesst\ntype: idea\ngrp: simple\n---\n" + formatDoc
		got, _ := number(t, in, Options{GroupField: "grp"})
		assert.Equal(t, "---\ntitle: tesst\ntype: idea\n---\n\n# test\n\n## test 1\n\n"+
			"simple-test-1 1 --\nsimple-test-1 2 --\n\nsimple-test-1 1 --\nsimple-test-1 2 --\n", got)
	})

	t.Run("named formats skipped without group", func(t *testing.T) {
		in := "---\ntitle: tesst\ntype: idea\n---\n" + formatDoc
		got, _ := number(t, in, Options{})
		assert.Equal(t, "---\ntitle: tesst\ntype: idea\n---\n\n# test\n\n## test 1\n\n"+
			"global-test-1 1 --\nglobal-test-1 2 --\n\nglobal-test-1 1 --\nglobal-test-1 2 --\n", got)
	})
}

func TestProcess_Templates(t *testing.T) {
	const custom = "\n:::num{reset counter}\n# :num{#cnt1}\n:::\n:::num{increment counter}\n## :num{#cnt1}\n:::\n" +
		":::num{reset assign}\n## :num\n### :num\n:::\n"

	t.Run("default template counters", func(t *testing.T) {
		section := ":num[sec]-:num[subsec]\n\n## test 1\n\n:num[sec]\n\n### test 1-1\n\n:num[sec]-:num[subsec]\n\n" +
			"### test 1-2\n\n:num[sec]-:num[subsec]\n\n## test 2\n\n:num[sec]\n\n### test 1-1\n\n:num[sec]-:num[subsec]\n\n"
		want := "0-0\n\n## test 1\n\n1\n\n### test 1-1\n\n1-1\n\n### test 1-2\n\n1-2\n\n## test 2\n\n2\n\n### test 1-1\n\n2-1"
		got, _ := number(t, "# test\n\n"+section+"# test\n\n"+section, Options{})
		assert.Equal(t, "# test\n\n"+want+"\n\n# test\n\n"+want+"\n", got)
	})

	t.Run("default template assign reset", func(t *testing.T) {
		in := "# test\n\n## test 1\n\n:num{#foo}\n\n:num{#bar}\n\n:num[foo]:num[bar]\n\n## test 2\n\n:num{#car}\n\n:num[foo]:num[bar]:num[car]\n"
		got, _ := number(t, in, Options{})
		assert.Equal(t, "# test\n\n## test 1\n\n1\n\n2\n\n12\n\n## test 2\n\n1\n\n121\n", got)
	})

	doc := "# test\n\n## test 1\n\n:num[cnt1]\n\n### test 1-1\n\n:num{#foo}:num{#bar}\n\n### test 1-2\n\n:num{#car}\n\n:num[foo]:num[bar]:num[car]\n"
	want := "# test\n\n## test 1\n\n1\n\n### test 1-1\n\n12\n\n### test 1-2\n\n1\n\n121\n"

	t.Run("custom template", func(t *testing.T) {
		got, _ := number(t, doc, Options{Templates: []string{custom}})
		assert.Equal(t, want, got)
	})

	t.Run("multiple templates", func(t *testing.T) {
		first := "\n:::num{reset counter}\n# :num{#cnt1}\n:::"
		second := "\n:::num{increment counter}\n## :num{#cnt1}\n:::\n:::num{reset assign}\n## :num\n### :num\n:::\n"
		got, _ := number(t, doc, Options{Templates: []string{first, second}})
		assert.Equal(t, want, got)
	})

	t.Run("custom template with default", func(t *testing.T) {
		in := "# test\n\n## test :num[sec]\n\n:num[cnt1]\n\n### test :num[sec]-:num[subsec]\n\n:num{#foo}:num{#bar}\n\n" +
			"### test :num[sec]-:num[subsec]\n\n:num{#car}\n\n:num[foo]:num[bar]:num[car]\n"
		got, _ := number(t, in, Options{Templates: []string{custom}, KeepDefaultTemplate: true})
		assert.Equal(t, "# test\n\n## test 1\n\n1\n\n### test 1-1\n\n12\n\n### test 1-2\n\n1\n\n121\n", got)
	})

	t.Run("template without containers", func(t *testing.T) {
		in := "# test\n\n## a\n\n:num[sec]{look}\n"
		got, stats := number(t, in, Options{Templates: []string{"just text :num{#sec reset=4}"}})
		assert.Equal(t, "# test\n\n## a\n\n(ReferenceError: \"sec\" is not defined)\n", got)
		assert.Equal(t, 1, stats.Unresolved)

		got, _ = number(t, in, Options{Templates: []string{"just text"}, KeepDefaultTemplate: true})
		assert.Equal(t, "# test\n\n## a\n\n1\n", got)
	})
}

func TestProcess_DeleteResetAssign(t *testing.T) {
	in := "# test\n\n:::num{reset assign delete}\n## :num\n:::\n\n## a\n\n:num{#foo}\n\n## b\n\n:num{#bar}\n"
	got, _ := number(t, in, Options{})
	assert.Equal(t, "# test\n\n## a\n\n1\n\n## b\n\n2\n", got)
}

func TestProcess_StatsAndFreshState(t *testing.T) {
	p := New(Options{}, nil)

	src := "# t\n\n:num{#fig reset}:num[fig]{up} :num{#a} :num[a] :num[missing]\n"
	for i := 0; i < 2; i++ {
		root := parser.ParseMarkdown([]byte(src))
		stats := p.Process(root)
		assert.Equal(t, Stats{Definitions: 2, Substitutions: 1, AssignReferences: 1, Unresolved: 1}, stats)
		assert.Equal(t, "# t\n\n1 1 1 (ReferenceError: \"missing\" is not defined)\n", render.Markdown(root))
	}
}

func TestProcess_PostPassNoopWithoutReferences(t *testing.T) {
	in := "# title\n\nplain *text* with :other[label] directive\n"
	got, stats := number(t, in, Options{})
	assert.Equal(t, in, got)
	assert.Equal(t, Stats{}, stats)
}
