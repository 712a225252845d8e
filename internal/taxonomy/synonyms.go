package taxonomy

// synonyms maps a lower-cased alias onto its canonical label. Canonical
// labels map onto themselves implicitly.
var synonyms = map[string]string{
	// languages
	"js":              "javascript",
	"ecmascript":      "javascript",
	"es6":             "javascript",
	"vanilla js":      "javascript",
	"ts":              "typescript",
	"py":              "python",
	"python3":         "python",
	"python 3":        "python",
	"golang":          "go",
	"c sharp":         "c#",
	"csharp":          "c#",
	"cpp":             "c++",
	"c plus plus":     "c++",
	"objective c":     "objective-c",
	"objc":            "objective-c",
	"r lang":          "r",
	"shell":           "bash",
	"shell scripting": "bash",

	// frameworks and runtimes
	"node":            "node.js",
	"nodejs":          "node.js",
	"node js":         "node.js",
	"reactjs":         "react",
	"react.js":        "react",
	"react js":        "react",
	"react native":    "react-native",
	"reactnative":     "react-native",
	"vuejs":           "vue",
	"vue.js":          "vue",
	"vue js":          "vue",
	"angularjs":       "angular",
	"angular.js":      "angular",
	"nextjs":          "next.js",
	"dotnet":          ".net",
	".net core":       ".net",
	"dotnet core":     ".net",
	"asp.net core":    "asp.net",
	"rails":           "ruby on rails",
	"ror":             "ruby on rails",
	"spring":          "spring boot",
	"springboot":      "spring boot",
	"fast api":        "fastapi",
	"scikit learn":    "scikit-learn",
	"sklearn":         "scikit-learn",
	"torch":           "pytorch",
	"tailwind":        "tailwind css",
	"tailwindcss":     "tailwind css",
	"html5":           "html",
	"css3":            "css",
	"scss":            "sass",
	"restful":         "rest",
	"rest api":        "rest",
	"rest apis":       "rest",
	"restful api":     "rest",
	"restful apis":    "rest",
	"gql":             "graphql",
	"grpc api":        "grpc",
	"micro services":  "microservices",
	"micro-services":  "microservices",
	"microservice":    "microservices",
	"event driven":    "event-driven architecture",
	"event-driven":    "event-driven architecture",
	"tdd":             "test-driven development",
	"test driven":     "test-driven development",
	"unit tests":      "unit testing",
	"oop":             "object-oriented programming",
	"object oriented": "object-oriented programming",

	// data
	"postgres":                    "postgresql",
	"psql":                        "postgresql",
	"pg":                          "postgresql",
	"mongo":                       "mongodb",
	"ms sql":                      "sql server",
	"mssql":                       "sql server",
	"microsoft sql server":        "sql server",
	"t-sql":                       "sql server",
	"tsql":                        "sql server",
	"elastic search":              "elasticsearch",
	"elastic":                     "elasticsearch",
	"apache kafka":                "kafka",
	"apache spark":                "spark",
	"pyspark":                     "spark",
	"ml":                          "machine learning",
	"deep-learning":               "deep learning",
	"dl":                          "deep learning",
	"ai":                          "artificial intelligence",
	"natural language processing": "nlp",
	"llm":                         "large language models",
	"llms":                        "large language models",
	"powerbi":                     "power bi",
	"ms excel":                    "excel",
	"microsoft excel":             "excel",
	"advanced excel":              "excel",
	"data analytics":              "data analysis",
	"etl pipelines":               "etl",
	"data warehousing":            "data warehouse",

	// cloud and operations
	"amazon web services":          "aws",
	"google cloud":                 "gcp",
	"google cloud platform":        "gcp",
	"microsoft azure":              "azure",
	"k8s":                          "kubernetes",
	"kube":                         "kubernetes",
	"docker compose":               "docker",
	"containers":                   "docker",
	"cicd":                         "ci/cd",
	"ci cd":                        "ci/cd",
	"continuous integration":       "ci/cd",
	"continuous delivery":          "ci/cd",
	"continuous deployment":        "ci/cd",
	"github actions":               "ci/cd",
	"iac":                          "infrastructure as code",
	"infra as code":                "infrastructure as code",
	"linux administration":         "linux",
	"unix":                         "linux",
	"site reliability":             "sre",
	"site reliability engineering": "sre",

	// business and practice
	"scrum master":        "scrum",
	"agile methodologies": "agile",
	"agile methodology":   "agile",
	"pm":                  "project management",
	"prince 2":            "prince2",
	"pmp certification":   "pmp",
	"sfdc":                "salesforce",
	"stakeholder mgmt":    "stakeholder management",
	"ux":                  "ux design",
	"ui":                  "ui design",
	"ui/ux":               "ux design",
	"ux/ui":               "ux design",
	"ms office":           "microsoft office",
	"office 365":          "microsoft office",
	"o365":                "microsoft office",
	"bookkeeping":         "accounting",
	"aca qualified":       "aca",
	"acca qualified":      "acca",
	"cima qualified":      "cima",
	"gdpr compliance":     "gdpr",
	"bd":                  "business development",
}
