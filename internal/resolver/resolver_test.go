package resolver

import (
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

func post(title string, date time.Time, categories ...string) *models.Document {
	return &models.Document{
		Kind:       models.KindPost,
		Title:      title,
		Date:       date,
		Categories: categories,
	}
}

func page(title, permalink string) *models.Document {
	return &models.Document{
		Kind:      models.KindPage,
		Title:     title,
		Permalink: permalink,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_EmptyInput(t *testing.T) {
	idx, err := Resolve(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.ByURL) != 0 || len(idx.PostsByDate) != 0 || len(idx.PostsByCategory) != 0 {
		t.Errorf("empty input should produce an empty index, got %+v", idx)
	}
}

func TestResolve_DerivedPostPermalink(t *testing.T) {
	p := post("Writing Your First Unit Test", day(2015, time.March, 12))
	idx, err := Resolve([]*models.Document{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/2015/03/12/writing-your-first-unit-test/"
	if p.Permalink != want {
		t.Errorf("permalink = %q, want %q", p.Permalink, want)
	}
	if idx.ByURL[want] != p {
		t.Errorf("ByURL[%q] missing", want)
	}
}

func TestResolve_OneEntryPerDocument(t *testing.T) {
	docs := []*models.Document{
		post("A", day(2015, time.January, 1)),
		post("B", day(2015, time.February, 1)),
		page("About", "/about/"),
	}
	idx, err := Resolve(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.ByURL) != len(docs) {
		t.Errorf("len(ByURL) = %d, want %d", len(idx.ByURL), len(docs))
	}
	if idx.ByURL["/about/"] == nil {
		t.Error("ByURL[/about/] missing")
	}
	if len(idx.Pages) != 1 {
		t.Errorf("len(Pages) = %d, want 1", len(idx.Pages))
	}
}

func TestResolve_PostsByDateDescending(t *testing.T) {
	docs := []*models.Document{
		post("Old", day(2014, time.June, 1)),
		post("New", day(2016, time.June, 1)),
		post("Mid", day(2015, time.June, 1)),
	}
	idx, err := Resolve(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{idx.PostsByDate[0].Title, idx.PostsByDate[1].Title, idx.PostsByDate[2].Title}
	if got[0] != "New" || got[1] != "Mid" || got[2] != "Old" {
		t.Errorf("order = %v, want [New Mid Old]", got)
	}
}

func TestResolve_StableOrderOnEqualDates(t *testing.T) {
	d := day(2015, time.March, 12)
	docs := []*models.Document{
		post("First In", d),
		post("Second In", d),
		post("Third In", d),
	}
	idx, err := Resolve(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"First In", "Second In", "Third In"} {
		if idx.PostsByDate[i].Title != want {
			t.Errorf("PostsByDate[%d] = %q, want %q", i, idx.PostsByDate[i].Title, want)
		}
	}
}

func TestResolve_CategoryPartitionPreservesOrder(t *testing.T) {
	docs := []*models.Document{
		post("A", day(2015, time.January, 1), "testing"),
		post("B", day(2015, time.March, 1), "testing", "tdd"),
		post("C", day(2015, time.February, 1), "tdd"),
	}
	idx, err := Resolve(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testing_ := idx.PostsByCategory["testing"]
	if len(testing_) != 2 || testing_[0].Title != "B" || testing_[1].Title != "A" {
		t.Errorf("testing = %v", titles(testing_))
	}
	tdd := idx.PostsByCategory["tdd"]
	if len(tdd) != 2 || tdd[0].Title != "B" || tdd[1].Title != "C" {
		t.Errorf("tdd = %v", titles(tdd))
	}

	// Each category slice must be a subsequence of PostsByDate.
	for cat, seq := range idx.PostsByCategory {
		if !isSubsequence(seq, idx.PostsByDate) {
			t.Errorf("category %q is not a subsequence of PostsByDate", cat)
		}
	}
}

func TestResolve_PageWithoutPermalink(t *testing.T) {
	_, err := Resolve([]*models.Document{{Kind: models.KindPage, Title: "About"}})
	if err == nil {
		t.Fatal("page without permalink should fail")
	}
	var mpe *apperr.MissingPermalinkError
	if !errors.As(err, &mpe) {
		t.Fatalf("error = %v, want MissingPermalinkError", err)
	}
	if mpe.Doc != "About" {
		t.Errorf("doc = %q, want About", mpe.Doc)
	}
}

func TestResolve_PostWithoutDate(t *testing.T) {
	_, err := Resolve([]*models.Document{{Kind: models.KindPost, Title: "Undated"}})
	if err == nil {
		t.Fatal("post without date should fail")
	}
	var mde *apperr.MissingDateError
	if !errors.As(err, &mde) {
		t.Fatalf("error = %v, want MissingDateError", err)
	}
}

func TestResolve_DuplicatePermalink(t *testing.T) {
	docs := []*models.Document{
		page("About", "/about/"),
		page("About Me", "/about/"),
	}
	idx, err := Resolve(docs)
	if err == nil {
		t.Fatal("duplicate permalink should fail")
	}
	if idx != nil {
		t.Error("no index may be produced on error")
	}
	var dpe *apperr.DuplicatePermalinkError
	if !errors.As(err, &dpe) {
		t.Fatalf("error = %v, want DuplicatePermalinkError", err)
	}
	if dpe.Path != "/about/" || dpe.First != "About" || dpe.Second != "About Me" {
		t.Errorf("collision = %+v", dpe)
	}
}

func TestResolve_AccumulatesAllErrors(t *testing.T) {
	docs := []*models.Document{
		{Kind: models.KindPage, Title: "No Permalink"},
		{Kind: models.KindPost, Title: "No Date"},
		page("A", "/x/"),
		page("B", "/x/"),
	}
	_, err := Resolve(docs)
	if err == nil {
		t.Fatal("expected errors")
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("error = %T, want *multierror.Error", err)
	}
	if len(merr.Errors) != 3 {
		t.Errorf("len(errors) = %d, want 3: %v", len(merr.Errors), merr)
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Writing Your First Unit Test", "writing-your-first-unit-test"},
		{"  Mocks & Stubs!!  ", "mocks-stubs"},
		{"XCTest 101", "xctest-101"},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func titles(docs []*models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Title
	}
	return out
}

func isSubsequence(sub, full []*models.Document) bool {
	i := 0
	for _, d := range full {
		if i < len(sub) && sub[i] == d {
			i++
		}
	}
	return i == len(sub)
}
