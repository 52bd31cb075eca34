package hook_test

import (
	"fmt"

	"github.com/mrz1836/workon/internal/hook"
)

func ExampleTags() {
	tags := hook.Tags([]string{"a.txt", "workA/b.txt", "workA/c.txt"})
	fmt.Print(hook.Prefix(tags) + "fix import")
	// Output: [project][workA] fix import
}
