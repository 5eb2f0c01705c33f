package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFilePlainText(t *testing.T) {
	res, err := FromFile("notes.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, 1, res.Pages)

	res, err = FromFile("README.md", []byte("# Title\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\nbody", res.Text)
}

func TestFromFileUnsupported(t *testing.T) {
	_, err := FromFile("archive.zip", []byte{0x50, 0x4b})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestFromFilePDFCountsPages(t *testing.T) {
	payload := []byte("%PDF-1.4\n/Type /Page\nsome visible text here\n/Type /Page\nmore text\x00\x01\x02")
	res, err := FromFile("doc.pdf", payload)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "some visible text here")
}

func TestFromFileBinaryWithoutText(t *testing.T) {
	_, err := FromFile("doc.docx", []byte{0x00, 0x01, 0x02, 0x03})
	assert.Error(t, err)
}

func TestFromFileDocxKeepsPrintableRuns(t *testing.T) {
	payload := append([]byte{0x00, 0x01}, []byte("quarterly revenue figures")...)
	payload = append(payload, 0x02, 0x03)

	res, err := FromFile("report.docx", payload)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "quarterly revenue figures")
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("photo.png"))
	assert.True(t, IsImage("scan.JPG"))
	assert.True(t, IsImage("anim.gif"))
	assert.False(t, IsImage("doc.pdf"))
	assert.False(t, IsImage("notes.txt"))
}

func TestImageDescription(t *testing.T) {
	desc := ImageDescription("vacation_beach-sunset.png", "image/png", 2048)

	assert.True(t, strings.HasPrefix(desc, "Image file: vacation_beach-sunset.png"))
	assert.Contains(t, desc, "vacation beach sunset")
	assert.Contains(t, desc, "image/png")
	assert.Contains(t, desc, "2048 bytes")
}
