package numbering

// DefaultTemplate numbers sections and subsections and restarts assigned
// numbers at every second-level heading.
const DefaultTemplate = `:::num{reset counter}
# :num{#sec}
# :num{#subsec}
## :num{#subsec}
:::

:::num{increment counter}
## :num{#sec}
### :num{#subsec}
:::

:::num{reset assign}
## :num
:::
`
