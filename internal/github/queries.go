package github

const projectBody = `
      id
      number
      title
      url
      fields(first: 50) {
        nodes {
          ... on ProjectV2Field { id name dataType }
          ... on ProjectV2IterationField { id name dataType }
          ... on ProjectV2SingleSelectField { id name dataType }
        }
      }`

const orgProjectQuery = `query($owner: String!, $number: Int!) {
  organization(login: $owner) {
    projectV2(number: $number) {` + projectBody + `
    }
  }
}`

const userProjectQuery = `query($owner: String!, $number: Int!) {
  user(login: $owner) {
    projectV2(number: $number) {` + projectBody + `
    }
  }
}`

const issueFields = `
          id
          number
          title
          body
          state
          url
          assignees(first: 10) { nodes { login } }
          labels(first: 20) { nodes { name } }
          milestone { title }`

const projectItemsQuery = `query($projectId: ID!, $first: Int!, $cursor: String) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: $first, after: $cursor) {
        pageInfo { hasNextPage endCursor }
        nodes {
          id
          fieldValues(first: 20) {
            nodes {
              ... on ProjectV2ItemFieldTextValue {
                text
                field { ... on ProjectV2Field { name } }
              }
              ... on ProjectV2ItemFieldDateValue {
                date
                field { ... on ProjectV2Field { name } }
              }
              ... on ProjectV2ItemFieldSingleSelectValue {
                name
                field { ... on ProjectV2SingleSelectField { name } }
              }
              ... on ProjectV2ItemFieldNumberValue {
                number
                field { ... on ProjectV2Field { name } }
              }
            }
          }
          content {
            __typename
            ... on Issue {` + issueFields + `
              parent { number }
            }
          }
        }
      }
    }
  }
}`

const subIssuesQuery = `query($issueId: ID!, $first: Int!, $cursor: String) {
  node(id: $issueId) {
    ... on Issue {
      subIssues(first: $first, after: $cursor) {
        pageInfo { hasNextPage endCursor }
        nodes {` + issueFields + `
        }
      }
    }
  }
}`

const setDateFieldMutation = `mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $date: Date!) {
  updateProjectV2ItemFieldValue(
    input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: {date: $date}}
  ) {
    projectV2Item { id }
  }
}`

const addItemMutation = `mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`

const addSubIssueMutation = `mutation($issueId: ID!, $subIssueId: ID!) {
  addSubIssue(input: {issueId: $issueId, subIssueId: $subIssueId}) {
    issue { id }
    subIssue { id }
  }
}`

const clearFieldMutation = `mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!) {
  clearProjectV2ItemFieldValue(input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId}) {
    projectV2Item { id }
  }
}`
