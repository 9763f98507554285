package analyze

import "testing"

func TestFormIssues(t *testing.T) {
	res := Forms(build(t, `
		<input id="bare">
		<input id="ph" placeholder="Search">
		<input id="ti" title="Zip">
		<label for="ok">City</label><input id="ok">
		<label for="inv">Phone</label><input id="inv" aria-invalid="true">
		<label for="gen">Code</label><input id="gen" aria-invalid="true" aria-errormessage="e1"><span id="e1">Invalid.</span>
		<label for="good">Age</label><input id="good" aria-invalid="true" aria-errormessage="e2"><span id="e2">Enter a number between 1 and 120</span>
		<label for="star">Email *</label><input id="star">
		<label for="req">Name *</label><input id="req" required>
		<label for="pat">PIN</label><input id="pat" pattern="[0-9]{4}">
		<label for="dt">Birthday</label><input id="dt" type="date" aria-describedby="dth"><span id="dth">DD/MM/YYYY</span>`))

	want := map[string]int{
		IssueMissingLabel:        1,
		IssuePlaceholderAsLabel:  1,
		IssueTitleAsLabel:        1,
		IssueMissingErrorMessage: 1,
		IssueGenericError:        1,
		IssueMissingRequired:     1,
		IssueMissingInstructions: 1,
	}
	for typ, n := range want {
		if got := countType(res.Issues, typ); got != n {
			t.Errorf("%s = %d, want %d", typ, got, n)
		}
	}
	if len(res.Items) != 11 {
		t.Errorf("items = %d, want 11", len(res.Items))
	}
	for _, it := range res.Items {
		if it.Label == "Age" && !it.HasErrorMessage {
			t.Errorf("Age should have an error message: %+v", it)
		}
	}
}

func TestFormGroups(t *testing.T) {
	res := Forms(build(t, `
		<fieldset><legend>Shipping</legend><label>Street <input></label></fieldset>
		<fieldset><label>Card <input></label></fieldset>
		<label><input type="radio" name="size"> S</label>
		<label><input type="radio" name="size"> M</label>
		<div role="radiogroup" aria-label="Color">
			<label><input type="radio" name="color"> Red</label>
			<label><input type="radio" name="color"> Blue</label>
		</div>`))

	if got := countType(res.Issues, IssueUnlabeledGroup); got != 2 {
		t.Errorf("unlabeled-group = %d, want 2: %+v", got, res.Issues)
	}
	for _, it := range res.Items {
		if it.Label == "Street" && it.Group < 0 {
			t.Error("street should belong to the shipping group")
		}
	}
}
