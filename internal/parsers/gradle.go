package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dela-run/dela/internal/task"
)

// GradleParser handles both Groovy (build.gradle) and Kotlin DSL
// (build.gradle.kts) syntax: it seeds common lifecycle targets, adds
// named custom targets, and attaches plugin-provided targets for
// recognized plugins (spec.md §4.1).
type GradleParser struct{}

func init() { register(GradleParser{}) }

func (GradleParser) Name() string                      { return "Gradle" }
func (GradleParser) DefinitionType() task.DefinitionType { return task.Gradle }
func (GradleParser) CandidateFilenames() []string {
	return []string{"build.gradle", "build.gradle.kts"}
}

var commonGradleTasks = []struct{ name, desc string }{
	{"build", "Assembles and tests this project"},
	{"clean", "Deletes the build directory"},
	{"test", "Runs the tests"},
	{"assemble", "Assembles the outputs of this project"},
	{"check", "Runs all checks"},
	{"compileJava", "Compiles Java sources"},
	{"compileKotlin", "Compiles Kotlin sources"},
	{"jar", "Assembles a jar archive"},
	{"javadoc", "Generates Javadoc API documentation"},
	{"run", "Runs this project as a JVM application"},
	{"distZip", "Bundles the project as a distribution"},
	{"distTar", "Bundles the project as a tar distribution"},
	{"wrapper", "Generates Gradle wrapper files"},
}

var pluginTasks = []struct {
	prefix string
	tasks  []string
}{
	{"java", []string{"classes", "testClasses", "javadoc", "jar", "test", "check"}},
	{"application", []string{"run", "startScripts", "distTar", "distZip", "installDist"}},
	{"kotlin", []string{"compileKotlin", "compileTestKotlin"}},
	{"spring-boot", []string{"bootRun", "bootJar", "bootWar"}},
	{"android", []string{"assembleDebug", "assembleRelease", "installDebug", "installRelease"}},
}

var (
	groovyTaskRE       = regexp.MustCompile(`task\s+(\w+)(?:\s*\{|\s*\(|\s+.*?\{)`)
	kotlinTaskRE       = regexp.MustCompile(`tasks\s*\.\s*register\s*<.*>\s*\(\s*"(\w+)"\s*\)`)
	kotlinTaskAltRE    = regexp.MustCompile(`task\s*\(\s*"(\w+)"\s*\)`)
	applyPluginRE      = regexp.MustCompile(`apply\s+plugin\s*:\s*['"]([^'"]+)['"]`)
	pluginsIDRE        = regexp.MustCompile(`plugins\s*\{\s*[\s\S]*?id\s*\(\s*["']([^"']+)["']\s*\)`)
	pluginsIDAltRE     = regexp.MustCompile(`plugins\s*\{\s*[\s\S]*?id\s*["']([^"']+)["']`)
	descSingleQuoteFmt = `description\s+'([^']*)'`
	descDoubleQuoteFmt = `description\s+"([^"]*)"`
)

func (p GradleParser) Parse(path string) ([]task.Task, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	content := string(data)

	var tasks []task.Task

	for _, ct := range commonGradleTasks {
		tasks = append(tasks, task.Task{
			Name: ct.name, SourceName: ct.name, FilePath: path,
			DefinitionType: task.Gradle, Runner: task.RunnerGradle, Description: ct.desc,
		})
	}

	for _, re := range []*regexp.Regexp{groovyTaskRE, kotlinTaskRE, kotlinTaskAltRE} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			name := m[1]
			tasks = append(tasks, task.Task{
				Name: name, SourceName: name, FilePath: path,
				DefinitionType: task.Gradle, Runner: task.RunnerGradle,
				Description: extractGradleTaskDescription(content, name),
			})
		}
	}

	tasks = append(tasks, extractGradlePluginTasks(content, path)...)

	return tasks, nil
}

func extractGradleTaskDescription(content, taskName string) string {
	escaped := regexp.QuoteMeta(taskName)
	taskPattern := fmt.Sprintf(`task\s+%s`, escaped)

	if re, err := regexp.Compile(taskPattern + `.+?` + descSingleQuoteFmt); err == nil {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	if re, err := regexp.Compile(taskPattern + `.+?` + descDoubleQuoteFmt); err == nil {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	kotlinPattern := fmt.Sprintf(`tasks[\s\S]*?"%s"[\s\S]+?description\s*=\s*"([^"]*)"`, escaped)
	if re, err := regexp.Compile(kotlinPattern); err == nil {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return "Custom Gradle task"
}

func extractGradlePluginTasks(content, path string) []task.Task {
	var identified []string
	for _, re := range []*regexp.Regexp{applyPluginRE, pluginsIDRE, pluginsIDAltRE} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			identified = append(identified, m[1])
		}
	}

	var tasks []task.Task
	for _, plugin := range identified {
		for _, pt := range pluginTasks {
			if !strings.Contains(plugin, pt.prefix) {
				continue
			}
			for _, name := range pt.tasks {
				tasks = append(tasks, task.Task{
					Name: name, SourceName: name, FilePath: path,
					DefinitionType: task.Gradle, Runner: task.RunnerGradle,
					Description: fmt.Sprintf("Task from %s plugin", pt.prefix),
				})
			}
		}
	}
	return tasks
}
