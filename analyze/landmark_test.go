package analyze

import "testing"

func TestLandmarksClean(t *testing.T) {
	res := Landmarks(build(t, `
		<header>Site</header>
		<nav>Menu</nav>
		<main><h1>Hi</h1><footer>inside main is not contentinfo</footer></main>
		<footer>Bye</footer>`))

	if len(res.Items) != 4 {
		t.Fatalf("items = %+v", res.Items)
	}
	roles := []string{"banner", "navigation", "main", "contentinfo"}
	for i, r := range roles {
		if res.Items[i].Role != r || res.Items[i].Parent != -1 {
			t.Errorf("item %d = %+v, want top-level %s", i, res.Items[i], r)
		}
	}
	if len(res.Issues) != 0 || res.Score != 100 {
		t.Errorf("issues = %+v score = %d", res.Issues, res.Score)
	}
}

func TestLandmarksMissingMain(t *testing.T) {
	res := Landmarks(build(t, `<nav>Menu</nav>`))
	if len(res.Issues) != 1 || res.Issues[0].Type != IssueMissingMain || res.Issues[0].NodeID != -1 {
		t.Fatalf("issues = %+v", res.Issues)
	}
	if res.Score != 80 {
		t.Errorf("score = %d, want 80", res.Score)
	}
}

func TestLandmarkIssues(t *testing.T) {
	res := Landmarks(build(t, `
		<header>one</header><header>two</header>
		<nav>a</nav><nav>b</nav>
		<aside aria-label="Related">x</aside><aside aria-label="related">y</aside>
		<div role="region">anonymous</div>
		<main><div role="banner">nested</div></main>
		<main>second</main>`))

	want := map[string]int{
		IssueMultipleMain:      1,
		IssueMissingLabel:      8,
		IssueDuplicateLabel:    1,
		IssueNestedIncorrectly: 1,
		IssueRedundantLandmark: 1,
	}
	for typ, n := range want {
		if got := countType(res.Issues, typ); got != n {
			t.Errorf("%s = %d, want %d", typ, got, n)
		}
	}
	dup := findIssue(t, res.Issues, IssueDuplicateLabel)
	if len(dup.Nodes) != 2 {
		t.Errorf("duplicate nodes = %v", dup.Nodes)
	}
	for _, it := range res.Items {
		if it.Role == "complementary" && !it.IsDuplicateLabel {
			t.Errorf("aside should be flagged duplicate: %+v", it)
		}
	}
}
