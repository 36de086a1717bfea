// Command futuresdesk runs phased multi-analyst research on Chinese commodity futures.
package main

func main() {
	Execute()
}
