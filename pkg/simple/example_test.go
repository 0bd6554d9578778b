package simple_test

import (
	"fmt"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

func ExampleNormalize() {
	name, _ := simple.Normalize("Zope.Interface")
	fmt.Println(name)
	// Output: zope-interface
}

func ExampleProjectURL() {
	u, _ := simple.ProjectURL("https://pypi.org/simple", "Django")
	fmt.Println(u)
	// Output: https://pypi.org/simple/django/
}

func ExampleAcceptHeader() {
	fmt.Println(simple.AcceptHeader(simple.AcceptHTML))
	// Output: application/vnd.pypi.simple.v1+html, text/html;q=0.01
}

func ExampleDecodeDetailsJSON() {
	body := []byte(`{
		"meta": {"api-version": "1.1"},
		"name": "sampleproject",
		"files": [
			{"filename": "sampleproject-4.0.0.tar.gz", "url": "https://files.example.com/sampleproject-4.0.0.tar.gz",
			 "hashes": {"sha256": "0ace"}, "yanked": "broken"}
		]
	}`)
	details, warn, err := simple.DecodeDetailsJSON(body)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	f := details.Files[0]
	sha, _ := f.Hashes.Get("SHA256")
	fmt.Println(details.Name, warn == nil)
	fmt.Println(f.Filename, sha, f.Yanked.IsYanked(), f.Yanked.Reason())
	// Output:
	// sampleproject true
	// sampleproject-4.0.0.tar.gz 0ace true broken
}

func ExampleDecodeIndexHTML() {
	page := `<html><body><a href="/simple/requests/">requests</a></body></html>`
	idx, _, _ := simple.DecodeIndexHTML(page, "https://pypi.org/simple/")
	for _, p := range idx.Projects {
		fmt.Println(p.Name, p.URL)
	}
	// Output: requests https://pypi.org/simple/requests/
}

func ExampleClassify() {
	c := simple.Classify(simple.SchemaVersion{Major: 1, Minor: 4}, 1, 1)
	fmt.Println(c.Status)
	// Output: supported-with-warning
}
