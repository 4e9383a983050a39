package content

import (
	"reflect"
	"testing"

	"github.com/atelierhub/atelier/models"
)

func TestExtractEntityImages(t *testing.T) {
	own1 := "https://cdn.example.com/class/7/content/a.webp"
	own2 := "https://cdn.example.com/class/7/content/b.webp"
	foreignEntity := "https://cdn.example.com/class/8/content/c.webp"
	foreignBucket := "https://cdn.example.com/gallery/7/content/d.webp"
	external := "https://elsewhere.example.com/7/pic.png"
	notWebp := "https://cdn.example.com/class/7/content/e.jpg"

	body := "intro ![one](" + own1 + ") text\n" +
		`<img src="` + own2 + `" alt="two">` + "\n" +
		"![dup](" + own1 + ")\n" +
		"![other](" + foreignEntity + ") ![bucket](" + foreignBucket + ")\n" +
		"![ext](" + external + ") ![jpg](" + notWebp + ")"

	got := ExtractEntityImages(body, models.KindClass, 7)
	want := []string{own1, own2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extracted %v, want %v", got, want)
	}
}

func TestExtractEntityImagesVirtualHosted(t *testing.T) {
	url := "https://class.s3.ap-northeast-2.amazonaws.com/3/content/x.webp"
	got := ExtractEntityImages("![v]("+url+")", models.KindClass, 3)
	if len(got) != 1 || got[0] != url {
		t.Fatalf("extracted %v, want [%s]", got, url)
	}
}

func TestExtractEntityImagesGalleryImagesCategory(t *testing.T) {
	url := "https://cdn.example.com/gallery/5/images/cover.webp"
	got := ExtractEntityImages(`<img src='`+url+`'>`, models.KindGallery, 5)
	if len(got) != 1 || got[0] != url {
		t.Fatalf("extracted %v, want [%s]", got, url)
	}
}

func TestExtractEntityImagesRejectsCraftedHosts(t *testing.T) {
	crafted := []string{
		"https://evil.example.com/7/content/a.webp",
		"https://class.evil.example.com/7/content/b.webp",
		"https://evil.example.com/7/images/c.webp",
	}
	body := ""
	for _, u := range crafted {
		body += "![x](" + u + ") "
	}
	if got := ExtractEntityImages(body, models.KindClass, 7); got != nil {
		t.Fatalf("crafted external URLs extracted as owned: %v", got)
	}
}

func TestExtractEntityImagesNewsHasNoBucket(t *testing.T) {
	if got := ExtractEntityImages("![x](https://cdn.example.com/class/1/content/a.webp)", models.KindNews, 1); got != nil {
		t.Fatalf("news extraction = %v, want nil", got)
	}
}

func TestPartition(t *testing.T) {
	oldURLs := []string{"a", "b", "c"}
	newURLs := []string{"b", "d"}

	removed, kept := Partition(oldURLs, newURLs)
	if !reflect.DeepEqual(removed, []string{"a", "c"}) {
		t.Fatalf("removed = %v, want [a c]", removed)
	}
	if !reflect.DeepEqual(kept, []string{"b"}) {
		t.Fatalf("kept = %v, want [b]", kept)
	}
	// removed and kept together must restore the old set
	if len(removed)+len(kept) != len(oldURLs) {
		t.Fatalf("partition lost elements: %v + %v vs %v", removed, kept, oldURLs)
	}
}

func TestPartitionEmpty(t *testing.T) {
	removed, kept := Partition(nil, []string{"a"})
	if removed != nil || kept != nil {
		t.Fatalf("partition of empty old = %v, %v, want nil, nil", removed, kept)
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" painting, oil , ,painting,watercolor ")
	want := []string{"painting", "oil", "watercolor"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitTags = %v, want %v", got, want)
	}
}
