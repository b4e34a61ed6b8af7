package portfolio

// TechStackReport is the markdown inventory shown by the TECH STACK tool.
const TechStackReport = `**// GENAI & AGENT SYSTEMS**
Agentic Workflows (LangChain/LangGraph, CrewAI), Multi-Modal Models (Audio/Video/Image), RAG Pipelines, Fine-Tuning.

**// Computer Vision & NLP**
YOLO, CNN, Mask R-CNN, OpenCV, BERT, Image Segmentation, HuggingFace

**// DATA SCIENCE & ML**
Predictive Modeling, Model Interpretability (SHAP/LIME), Time Series Forecasting (ARIMA/Prophet), Clustering, Scikit-Learn, TensorFlow, PyTorch, XGBoost, CatBoost, LightGBM.

**// FULL STACK**
React, FastAPI, Node.js, TailwindCSS

**// MLOPS, LLMOPS & CLOUD**
AWS, Azure, LangSmith, Docker, Kubernetes, CI/CD, Git, Model Observability (MLflow/W&B)`

// TechStackSpoken is the shorter line read aloud alongside TechStackReport.
const TechStackSpoken = "Accessing Technical Inventory. My core stack is built on Python and Gemini for AI, supported by React for frontend, and deployed via Docker and Kubernetes on Cloud infrastructure."
