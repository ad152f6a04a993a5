package youtube

import "testing"

func TestIsVideoURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"  https://youtu.be/dQw4w9WgXcQ  ", true},
		{"watch this https://youtu.be/dQw4w9WgXcQ please", false},
		{"what is paging and segmentation", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", false},
	}

	for _, tc := range tests {
		if got := IsVideoURL(tc.in); got != tc.want {
			t.Errorf("IsVideoURL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"not a url", "", true},
	}

	for _, tc := range tests {
		got, err := extractVideoID(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("extractVideoID(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("extractVideoID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCaptionTrackURL(t *testing.T) {
	page := `prefix"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		`{"baseUrl":"https://example.com/track","languageCode":"en"}]}},"videoDetails":{}`
	url, err := captionTrackURL(page, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("captionTrackURL: %v", err)
	}
	if url != "https://example.com/track" {
		t.Errorf("url = %q", url)
	}

	if _, err := captionTrackURL("<html>no captions here</html>", "dQw4w9WgXcQ"); err == nil {
		t.Error("page without captions accepted")
	}
}
