package manifest

import (
	"regexp"
	"strings"
)

const (
	lineFeedConstant               = "\n"
	carriageReturnConstant         = "\r"
	packageVersionFieldConstant    = "PackageVersion: "
	installerURLFieldConstant      = "InstallerUrl: "
	installerSHA256FieldConstant   = "InstallerSha256: "
	releaseNotesURLFieldConstant   = "ReleaseNotesUrl: "
	upgradeBehaviorLineConstant    = "UpgradeBehavior: uninstallPrevious"
	indentationReplacementConstant = ' '
)

var (
	packageVersionPattern    = regexp.MustCompile(`^PackageVersion:`)
	installerURLPattern      = regexp.MustCompile(`^(\s*(?:-\s+)?)InstallerUrl:`)
	installerSHA256Pattern   = regexp.MustCompile(`^(\s*(?:-\s+)?)InstallerSha256:`)
	releaseNotesURLPattern   = regexp.MustCompile(`^ReleaseNotesUrl:`)
	upgradeBehaviorPattern   = regexp.MustCompile(`^\s*(?:-\s+)?UpgradeBehavior:`)
	portableInstallerPattern = regexp.MustCompile(`^(\s*(?:-\s+)?)NestedInstallerType:\s*portable\s*$`)
)

// FieldValues holds the replacement values written into a manifest.
type FieldValues struct {
	PackageVersion  string
	InstallerURL    string
	InstallerSHA256 string
	ReleaseNotesURL string
}

type manifestLine struct {
	body       string
	terminator string
}

// PatchManifest rewrites the version, installer and release-notes fields of manifest content line by line, keeping
// each line's terminator. When no UpgradeBehavior field is present, one is added after every portable
// NestedInstallerType line at that line's indentation. Applying the patch twice yields the same content.
func PatchManifest(content string, values FieldValues) string {
	lines := splitManifestLines(content)
	upgradeBehaviorPresent := false
	for _, line := range lines {
		if upgradeBehaviorPattern.MatchString(line.body) {
			upgradeBehaviorPresent = true
			break
		}
	}

	patchedLines := make([]manifestLine, 0, len(lines)+1)
	for _, line := range lines {
		line.body = patchLine(line.body, values)
		if upgradeBehaviorPresent {
			patchedLines = append(patchedLines, line)
			continue
		}

		portableMatch := portableInstallerPattern.FindStringSubmatch(line.body)
		if portableMatch == nil {
			patchedLines = append(patchedLines, line)
			continue
		}

		insertedLine := manifestLine{body: blankIndentation(portableMatch[1]) + upgradeBehaviorLineConstant, terminator: line.terminator}
		if len(line.terminator) == 0 {
			line.terminator = firstTerminator(lines)
		}
		patchedLines = append(patchedLines, line, insertedLine)
	}

	var builder strings.Builder
	builder.Grow(len(content) + len(upgradeBehaviorLineConstant))
	for _, line := range patchedLines {
		builder.WriteString(line.body)
		builder.WriteString(line.terminator)
	}
	return builder.String()
}

func patchLine(body string, values FieldValues) string {
	switch {
	case packageVersionPattern.MatchString(body):
		return packageVersionFieldConstant + values.PackageVersion
	case releaseNotesURLPattern.MatchString(body):
		return releaseNotesURLFieldConstant + values.ReleaseNotesURL
	}
	if match := installerURLPattern.FindStringSubmatch(body); match != nil {
		return match[1] + installerURLFieldConstant + values.InstallerURL
	}
	if match := installerSHA256Pattern.FindStringSubmatch(body); match != nil {
		return match[1] + installerSHA256FieldConstant + values.InstallerSHA256
	}
	return body
}

func splitManifestLines(content string) []manifestLine {
	if len(content) == 0 {
		return nil
	}
	rawLines := strings.SplitAfter(content, lineFeedConstant)
	lines := make([]manifestLine, 0, len(rawLines))
	for _, rawLine := range rawLines {
		if len(rawLine) == 0 {
			continue
		}
		body := strings.TrimSuffix(rawLine, lineFeedConstant)
		terminator := rawLine[len(body):]
		if strings.HasSuffix(body, carriageReturnConstant) {
			body = strings.TrimSuffix(body, carriageReturnConstant)
			terminator = carriageReturnConstant + terminator
		}
		lines = append(lines, manifestLine{body: body, terminator: terminator})
	}
	return lines
}

func firstTerminator(lines []manifestLine) string {
	for _, line := range lines {
		if len(line.terminator) > 0 {
			return line.terminator
		}
	}
	return lineFeedConstant
}

func blankIndentation(prefix string) string {
	return strings.Map(func(character rune) rune {
		if character == '\t' {
			return character
		}
		return indentationReplacementConstant
	}, prefix)
}
